package models

// MergeHeartbeat folds a heartbeat into the latest event of a bucket.
//
// The merge succeeds when both carry the same data and the heartbeat starts
// no earlier than last and no later than pulsetime seconds after last ends.
// The merged event keeps last's id, start and data and ends at the later of
// the two end times. ok is false when the heartbeat must be stored as a new
// event instead.
func MergeHeartbeat(last, hb Event, pulsetime float64) (merged Event, ok bool) {
	if !SameData(last.Data, hb.Data) {
		return Event{}, false
	}

	lastEnd := last.End()
	if hb.Timestamp.Before(last.Timestamp) || hb.Timestamp.After(lastEnd.Add(Seconds(pulsetime))) {
		return Event{}, false
	}

	end := lastEnd
	if hbEnd := hb.End(); hbEnd.After(end) {
		end = hbEnd
	}

	merged = last
	merged.Duration = end.Sub(last.Timestamp).Seconds()
	return merged, true
}

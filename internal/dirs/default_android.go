//go:build android

package dirs

// AndroidDataDir is the files dir of the ActivityWatch app for the primary
// user. The host normally overrides it with Context.getFilesDir().
const AndroidDataDir = "/data/user/0/net.activitywatch.android/files"

// DefaultDataDir returns the fallback data directory.
func DefaultDataDir() string {
	return AndroidDataDir
}

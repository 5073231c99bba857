// Command libaw is the native library loaded by the ActivityWatch Android
// app. Build it as a shared object:
//
//	CGO_ENABLED=1 GOOS=android GOARCH=arm64 CC=<ndk clang> \
//		go build -buildmode=c-shared -o libaw_server.so ./cmd/libaw
//
// On other platforms the same build produces a library exposing only the
// plain C entry points.
package main

import "github.com/roach88/awbridge/internal/boundary"

const version = "0.13.1-go"

// bridge is the single owner of boundary state for the loaded library.
var bridge = boundary.New(boundary.Options{
	Version:    version,
	LogHandler: platformLogHandler,
})

func main() {}

//go:build android && cgo

package main

/*
#include <jni.h>
#include <stdlib.h>

static jsize aw_string_length(JNIEnv *env, jstring s) {
	return (*env)->GetStringLength(env, s);
}

static const jchar *aw_get_chars(JNIEnv *env, jstring s) {
	return (*env)->GetStringChars(env, s, NULL);
}

static void aw_release_chars(JNIEnv *env, jstring s, const jchar *c) {
	(*env)->ReleaseStringChars(env, s, c);
}

static jstring aw_new_string(JNIEnv *env, const jchar *c, jsize n) {
	jstring s = (*env)->NewString(env, c, n);
	if ((*env)->ExceptionCheck(env)) {
		(*env)->ExceptionClear(env);
		return NULL;
	}
	return s;
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf16"
	"unsafe"

	"github.com/roach88/awbridge/internal/boundary"
)

// jniHost reads and allocates java.lang.String objects. Local references it
// creates are released by the JVM when the native method returns.
type jniHost struct {
	env *C.JNIEnv
}

func (j jniHost) GetString(h boundary.Handle) (string, error) {
	s := C.jstring(unsafe.Pointer(h))
	n := int(C.aw_string_length(j.env, s))
	chars := C.aw_get_chars(j.env, s)
	if chars == nil {
		return "", errors.New("GetStringChars failed")
	}
	defer C.aw_release_chars(j.env, s, chars)

	units := unsafe.Slice((*uint16)(unsafe.Pointer(chars)), n)
	return decodeUTF16(units)
}

func (j jniHost) NewString(s string) (boundary.Handle, error) {
	units := utf16.Encode([]rune(s))
	var buf [1]C.jchar
	ptr := &buf[0]
	if len(units) > 0 {
		ptr = (*C.jchar)(unsafe.Pointer(&units[0]))
	}
	js := C.aw_new_string(j.env, ptr, C.jsize(len(units)))
	if js == nil {
		return boundary.NullHandle, errors.New("NewString failed")
	}
	return boundary.Handle(unsafe.Pointer(js)), nil
}

// decodeUTF16 rejects unpaired surrogates instead of replacing them.
func decodeUTF16(units []uint16) (string, error) {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		if !utf16.IsSurrogate(u) {
			runes = append(runes, u)
			continue
		}
		if i+1 < len(units) {
			if r := utf16.DecodeRune(u, rune(units[i+1])); r != unicode.ReplacementChar {
				runes = append(runes, r)
				i++
				continue
			}
		}
		return "", fmt.Errorf("%w: unpaired surrogate at %d", boundary.ErrInvalidUTF8, i)
	}
	return string(runes), nil
}

func handleOf(s C.jstring) boundary.Handle {
	return boundary.Handle(unsafe.Pointer(s))
}

func jstringOf(h boundary.Handle) C.jstring {
	return C.jstring(unsafe.Pointer(h))
}

//export Java_net_activitywatch_android_RustInterface_greeting
func Java_net_activitywatch_android_RustInterface_greeting(env *C.JNIEnv, _ C.jclass, name C.jstring) C.jstring {
	return jstringOf(bridge.Greet(jniHost{env}, handleOf(name)))
}

//export Java_net_activitywatch_android_RustInterface_initialize
func Java_net_activitywatch_android_RustInterface_initialize(env *C.JNIEnv, _ C.jclass) {
	bridge.Initialize()
}

//export Java_net_activitywatch_android_RustInterface_setDataDir
func Java_net_activitywatch_android_RustInterface_setDataDir(env *C.JNIEnv, _ C.jclass, dir C.jstring) {
	_ = bridge.SetDataDir(jniHost{env}, handleOf(dir))
}

//export Java_net_activitywatch_android_RustInterface_startServer
func Java_net_activitywatch_android_RustInterface_startServer(env *C.JNIEnv, _ C.jclass) {
	_ = bridge.StartServer(context.Background())
}

//export Java_net_activitywatch_android_RustInterface_stopServer
func Java_net_activitywatch_android_RustInterface_stopServer(env *C.JNIEnv, _ C.jclass) {
	bridge.StopServer()
}

//export Java_net_activitywatch_android_RustInterface_getBuckets
func Java_net_activitywatch_android_RustInterface_getBuckets(env *C.JNIEnv, _ C.jclass) C.jstring {
	return jstringOf(bridge.GetBuckets(jniHost{env}))
}

//export Java_net_activitywatch_android_RustInterface_createBucket
func Java_net_activitywatch_android_RustInterface_createBucket(env *C.JNIEnv, _ C.jclass, bucket C.jstring) C.jstring {
	return jstringOf(bridge.CreateBucket(jniHost{env}, handleOf(bucket)))
}

//export Java_net_activitywatch_android_RustInterface_heartbeat
func Java_net_activitywatch_android_RustInterface_heartbeat(env *C.JNIEnv, _ C.jclass, bucketID, event C.jstring, pulsetime C.jdouble) C.jstring {
	return jstringOf(bridge.Heartbeat(jniHost{env}, handleOf(bucketID), handleOf(event), float64(pulsetime)))
}

//export Java_net_activitywatch_android_RustInterface_getEvents
func Java_net_activitywatch_android_RustInterface_getEvents(env *C.JNIEnv, _ C.jclass, bucketID C.jstring, limit C.jint) C.jstring {
	return jstringOf(bridge.GetEvents(jniHost{env}, handleOf(bucketID), int32(limit)))
}

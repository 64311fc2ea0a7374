// Package failfast panics on programmer errors detected at construction time.
package failfast

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
)

// Err panics if err != nil, with a stack trace
func Err(err error) {
	if err != nil {
		panic(fmt.Errorf("fail-fast: %w\n%s", err, debug.Stack()))
	}
}

// If panics if condition is false
func If(condition bool, message string, args ...interface{}) {
	if !condition {
		panic(fmt.Errorf("fail-fast: "+message, args...))
	}
}

// NotNil panics if ptr is nil, including typed nil pointers, maps, funcs and interfaces
func NotNil(ptr interface{}, name string) {
	if ptr == nil {
		panic(fmt.Errorf("fail-fast: %s is nil", name))
	}
	v := reflect.ValueOf(ptr)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface, reflect.Chan:
		if v.IsNil() {
			panic(fmt.Errorf("fail-fast: %s is nil", name))
		}
	}
}

// NotEmpty panics if s is blank
func NotEmpty(s string, name string) {
	if strings.TrimSpace(s) == "" {
		panic(fmt.Errorf("fail-fast: %s is empty", name))
	}
}

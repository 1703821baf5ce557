package main

import "errors"

// errCriticalFindings signals a clean scan that nonetheless found a
// Critical or High match while fail_on_critical is configured true
// (spec.md §6: exit code 1). Every other error path exits 2.
var errCriticalFindings = errors.New("critical or high severity match found")

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errCriticalFindings) {
		return 1
	}
	return 2
}

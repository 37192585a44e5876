// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

// Package health models the diagnostics reported by `otama doctor`.
package health

import "time"

// Status is the outcome of one check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is a point-in-time result safe to serialize to JSON.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Report collects the checks of one diagnostics run.
type Report struct {
	CheckedAt time.Time `json:"checked_at"`
	Checks    []Check   `json:"checks"`
}

// NewReport starts an empty report stamped with now.
func NewReport(now time.Time) *Report {
	return &Report{CheckedAt: now.UTC()}
}

// Add appends a check result.
func (r *Report) Add(name string, status Status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

// Healthy reports whether no check failed. Warnings do not count.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Failed returns the names of failed checks in order.
func (r *Report) Failed() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			names = append(names, c.Name)
		}
	}
	return names
}

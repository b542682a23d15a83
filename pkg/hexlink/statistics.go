// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexlink

import (
	"fmt"
	"time"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
)

// Statistics tracks transaction outcomes and rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalRuns        uint64
	CompleteRuns     uint64
	IncompleteRuns   uint64
	FailedRuns       uint64
	ValidationErrors uint64
	LinkErrors       uint64
	WriteTimeouts    uint64

	// Timing
	TotalElapsed time.Duration
	LastValue    uint64

	// Rates (calculated)
	RunRate   float64 // runs/sec
	ErrorRate float64 // failed or incomplete runs/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one transaction outcome
func (s *Statistics) Update(res *uartlink.Result, err error) {
	s.TotalRuns++
	s.LastUpdateTime = time.Now()

	if err != nil {
		s.FailedRuns++
		switch hexframe.KindOf(err).Class() {
		case hexframe.ClassValidation, hexframe.ClassEncoding:
			s.ValidationErrors++
		case hexframe.ClassTransport:
			if hexframe.KindOf(err) == hexframe.WriteTimeout {
				s.WriteTimeouts++
			} else {
				s.LinkErrors++
			}
		}
		return
	}
	if res == nil {
		s.FailedRuns++
		return
	}

	s.TotalElapsed += res.Elapsed
	if v, verr := res.Value(); verr == nil {
		s.CompleteRuns++
		s.LastValue = v
	} else {
		s.IncompleteRuns++
	}
}

// CalculateRates calculates run and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.RunRate = float64(s.TotalRuns) / elapsed
		s.ErrorRate = float64(s.FailedRuns+s.IncompleteRuns) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var completePercent, incompletePercent, failedPercent float64
	if s.TotalRuns > 0 {
		completePercent = float64(s.CompleteRuns) * 100.0 / float64(s.TotalRuns)
		incompletePercent = float64(s.IncompleteRuns) * 100.0 / float64(s.TotalRuns)
		failedPercent = float64(s.FailedRuns) * 100.0 / float64(s.TotalRuns)
	}

	var avg time.Duration
	if exchanged := s.CompleteRuns + s.IncompleteRuns; exchanged > 0 {
		avg = s.TotalElapsed / time.Duration(exchanged)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Runs:      %8d\n", s.TotalRuns)
	result += fmt.Sprintf("Complete:        %8d (%.1f%%)\n", s.CompleteRuns, completePercent)

	if s.IncompleteRuns > 0 {
		result += fmt.Sprintf("Incomplete:      %8d (%.1f%%)\n", s.IncompleteRuns, incompletePercent)
	}
	if s.FailedRuns > 0 {
		result += fmt.Sprintf("Failed:          %8d (%.1f%%)\n", s.FailedRuns, failedPercent)
		if s.ValidationErrors > 0 {
			result += fmt.Sprintf("  Invalid Input:    %5d\n", s.ValidationErrors)
		}
		if s.LinkErrors > 0 {
			result += fmt.Sprintf("  Link Errors:      %5d\n", s.LinkErrors)
		}
		if s.WriteTimeouts > 0 {
			result += fmt.Sprintf("  Write Timeouts:   %5d\n", s.WriteTimeouts)
		}
	}
	if s.CompleteRuns > 0 {
		result += fmt.Sprintf("Last Value:      %8d\n", s.LastValue)
	}

	result += fmt.Sprintf("Avg Round Trip:  %8s\n", avg.Round(time.Millisecond))
	result += fmt.Sprintf("Run Rate:        %8.2f runs/sec\n", s.RunRate)
	result += fmt.Sprintf("Error Rate:      %8.2f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}

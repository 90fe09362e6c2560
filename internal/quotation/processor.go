package quotation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CooldownSeconds is the window after a scan during which a repeat scan
// of the same quotation is rejected.
const CooldownSeconds = 120

// claimAttempts bounds the re-read-and-retry loop when a conditional
// slot claim loses to a concurrent scan.
const claimAttempts = 2

// Processor decides whether a scan is the first, the second, a
// duplicate-too-soon, or an over-scan, and records it. Business
// rejections come back as ScanResult values with Success false; only
// store failures are returned as errors.
type Processor struct {
	store RecordStore
	loc   *time.Location
	clock Clock
}

// NewProcessor creates a Processor using the wall clock.
func NewProcessor(store RecordStore, loc *time.Location) *Processor {
	return NewProcessorWithClock(store, loc, systemClock{})
}

// NewProcessorWithClock creates a Processor with a custom clock for testing.
func NewProcessorWithClock(store RecordStore, loc *time.Location, clock Clock) *Processor {
	return &Processor{
		store: store,
		loc:   loc,
		clock: clock,
	}
}

// Process records a scan for a quotation. quotationNumber and operator
// are expected to be validated and trimmed by the caller.
func (p *Processor) Process(quotationNumber, operator string) (*ScanResult, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		result, retry, err := p.attempt(quotationNumber, operator)
		if err != nil {
			return nil, err
		}
		if retry {
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("conflicting concurrent scans for quotation %s", quotationNumber)
}

// attempt runs one read-decide-claim pass. retry is true when a claim
// lost to a concurrent scan and the record must be re-read.
func (p *Processor) attempt(quotationNumber, operator string) (result *ScanResult, retry bool, err error) {
	record, err := p.store.FindByQuotationNumber(quotationNumber)
	if errors.Is(err, ErrRecordNotFound) {
		return &ScanResult{
			Success: false,
			Reason:  ReasonNotFound,
			Error:   fmt.Sprintf("Quotation number %s not found", quotationNumber),
		}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	now := p.clock.Now().In(p.loc)

	if last, ok := mostRecentScan(record, p.loc); ok {
		elapsed := last.ElapsedSeconds(now)
		if elapsed < CooldownSeconds {
			return cooldownResult(quotationNumber, elapsed), false, nil
		}
	}

	timestamp := NewScanTime(now, p.loc).Format()

	switch {
	case strings.TrimSpace(record.FirstScan) == "":
		claimed, err := p.store.ClaimFirstScan(record.ID, timestamp, operator)
		if err != nil {
			return nil, false, err
		}
		if !claimed {
			return nil, true, nil
		}
		return &ScanResult{
			Success:    true,
			Message:    fmt.Sprintf("First scan recorded for quotation %s", quotationNumber),
			ScanNumber: 1,
			Timestamp:  timestamp,
			AccountNo:  record.AccountNo,
		}, false, nil

	case strings.TrimSpace(record.SecondScan) == "":
		claimed, err := p.store.ClaimSecondScan(record.ID, timestamp)
		if err != nil {
			return nil, false, err
		}
		if !claimed {
			return nil, true, nil
		}
		return &ScanResult{
			Success:    true,
			Message:    fmt.Sprintf("Second scan recorded for quotation %s", quotationNumber),
			ScanNumber: 2,
			Timestamp:  timestamp,
			AccountNo:  record.AccountNo,
		}, false, nil

	default:
		return &ScanResult{
			Success:    false,
			Reason:     ReasonCompleted,
			Error:      fmt.Sprintf("Quotation %s has already been scanned twice", quotationNumber),
			FirstScan:  record.FirstScan,
			SecondScan: record.SecondScan,
		}, false, nil
	}
}

// mostRecentScan picks the timestamp of the latest recorded scan:
// the second slot when it holds a parseable value, otherwise the first.
// Values that do not parse are treated as absent.
func mostRecentScan(record *Record, loc *time.Location) (ScanTime, bool) {
	if st, ok := ParseScanTime(record.SecondScan, loc); ok {
		return st, true
	}
	if st, ok := ParseScanTime(record.FirstScan, loc); ok {
		return st, true
	}
	return ScanTime{}, false
}

// cooldownResult builds the duplicate-too-soon rejection with the
// composed wait message.
func cooldownResult(quotationNumber string, elapsed int) *ScanResult {
	secondsAgo := elapsed
	secondsRemaining := CooldownSeconds - secondsAgo

	var waitMsg string
	if minutes := secondsRemaining / 60; minutes > 0 {
		waitMsg = fmt.Sprintf("%d minute(s) %d second(s)", minutes, secondsRemaining%60)
	} else {
		waitMsg = fmt.Sprintf("%d second(s)", secondsRemaining)
	}

	return &ScanResult{
		Success: false,
		Reason:  ReasonCooldown,
		Error: fmt.Sprintf("Quotation %s was scanned %d second(s) ago. Please wait %s before scanning again.",
			quotationNumber, secondsAgo, waitMsg),
		SecondsAgo:       &secondsAgo,
		SecondsRemaining: &secondsRemaining,
	}
}

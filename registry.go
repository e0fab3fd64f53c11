package fmsim

import (
	"fmt"
	"sort"
)

// segmentConstructor builds one segment variant from its config.
type segmentConstructor func(cfg SegmentConfig) (FlightPart, error)

// segmentRegistry maps mission-definition keywords onto constructors. It is a
// static mapping built at startup: unknown keywords are a named error, not a
// bare lookup failure.
var segmentRegistry = map[string]segmentConstructor{
	"altitude_change": func(cfg SegmentConfig) (FlightPart, error) { return NewAltitudeChange(cfg), nil },
	"speed_change":    func(cfg SegmentConfig) (FlightPart, error) { return NewSpeedChange(cfg), nil },
	"cruise":          func(cfg SegmentConfig) (FlightPart, error) { return NewCruise(cfg), nil },
	"optimal_cruise":  func(cfg SegmentConfig) (FlightPart, error) { return NewOptimalCruise(cfg), nil },
	"climbing_cruise": func(cfg SegmentConfig) (FlightPart, error) { return NewClimbingCruise(cfg), nil },
	"breguet_cruise":  func(cfg SegmentConfig) (FlightPart, error) { return NewBreguetCruise(cfg, true), nil },
	"hold":            func(cfg SegmentConfig) (FlightPart, error) { return NewHold(cfg), nil },
	"taxi":            func(cfg SegmentConfig) (FlightPart, error) { return NewTaxi(cfg), nil },
	"mass_target":     func(cfg SegmentConfig) (FlightPart, error) { return NewMassTarget(cfg), nil },
}

// NewSegmentFor builds the segment registered under the given keyword.
func NewSegmentFor(keyword string, cfg SegmentConfig) (FlightPart, error) {
	ctor, ok := segmentRegistry[keyword]
	if !ok {
		return nil, fmt.Errorf("%w: segment keyword %q (known: %v)", ErrUnknownMissionElement, keyword, RegisteredSegments())
	}
	return ctor(cfg)
}

// RegisteredSegments lists the known segment keywords, sorted.
func RegisteredSegments() []string {
	keys := make([]string, 0, len(segmentRegistry))
	for k := range segmentRegistry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

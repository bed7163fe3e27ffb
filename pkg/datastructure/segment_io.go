package datastructure

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/dsnet/compress/bzip2"
)

/*
segment snapshot persistence. one file per trip, line-oriented text behind a
bzip2 writer:

	tripID numSegments
	segmentID status generation originalCount ratio policy start end numPoints
	lat lon alt speed hacc vacc timestamp      (numPoints lines)

floats are formatted with -1 precision so the snapshot round-trips exactly.
*/

func WriteSegments(filename string, tripID string, segments []*Segment) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%s %d\n", tripID, len(segments))

	for _, s := range segments {
		ratioF := strconv.FormatFloat(s.compressionRatio, 'f', -1, 64)
		policy := s.policyUsed
		if policy == "" {
			policy = "-"
		}
		fmt.Fprintf(w, "%d %d %d %d %s %s %d %d %d\n",
			s.id, uint32(s.Status()), s.generation.Load(), s.originalPointCount,
			ratioF, policy, s.startTime.UnixNano(), s.endTime.UnixNano(), len(s.points))

		for _, p := range s.points {
			latF := strconv.FormatFloat(p.lat, 'f', -1, 64)
			lonF := strconv.FormatFloat(p.lon, 'f', -1, 64)
			altF := strconv.FormatFloat(p.altitude, 'f', -1, 64)
			speedF := strconv.FormatFloat(p.speed, 'f', -1, 64)
			haccF := strconv.FormatFloat(p.horizontalAccuracy, 'f', -1, 64)
			vaccF := strconv.FormatFloat(p.verticalAccuracy, 'f', -1, 64)

			fmt.Fprintf(w, "%s %s %s %s %s %s %d\n",
				latF, lonF, altF, speedF, haccF, vaccF, p.timestamp.UnixNano())
		}
	}

	return w.Flush()
}

func ReadSegments(filename string) (string, []*Segment, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		return "", nil, err
	}
	defer bz.Close()

	r := bufio.NewReader(bz)

	var (
		tripID      string
		numSegments int
	)
	if _, err := fmt.Fscanf(r, "%s %d\n", &tripID, &numSegments); err != nil {
		return "", nil, fmt.Errorf("read snapshot header: %w", err)
	}

	segments := make([]*Segment, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		var (
			id, status     uint32
			generation     uint64
			origCount      int
			ratioF, policy string
			start, end     int64
			numPoints      int
		)
		if _, err := fmt.Fscanf(r, "%d %d %d %d %s %s %d %d %d\n",
			&id, &status, &generation, &origCount, &ratioF, &policy, &start, &end, &numPoints); err != nil {
			return "", nil, fmt.Errorf("read segment header %d: %w", i, err)
		}
		ratio, err := strconv.ParseFloat(ratioF, 64)
		if err != nil {
			return "", nil, fmt.Errorf("read segment ratio %d: %w", i, err)
		}
		if policy == "-" {
			policy = ""
		}

		s := &Segment{
			tripID:             tripID,
			id:                 id,
			points:             make([]Fix, 0, numPoints),
			originalPointCount: origCount,
			compressionRatio:   ratio,
			policyUsed:         policy,
			startTime:          time.Unix(0, start),
			endTime:            time.Unix(0, end),
			minLat:             math.MaxFloat64,
			minLon:             math.MaxFloat64,
			maxLat:             -math.MaxFloat64,
			maxLon:             -math.MaxFloat64,
		}
		s.status.Store(status)
		s.generation.Store(generation)

		for j := 0; j < numPoints; j++ {
			var (
				latF, lonF, altF, speedF, haccF, vaccF string
				ts                                     int64
			)
			if _, err := fmt.Fscanf(r, "%s %s %s %s %s %s %d\n",
				&latF, &lonF, &altF, &speedF, &haccF, &vaccF, &ts); err != nil {
				return "", nil, fmt.Errorf("read point %d of segment %d: %w", j, i, err)
			}
			lat, err := strconv.ParseFloat(latF, 64)
			if err != nil {
				return "", nil, err
			}
			lon, err := strconv.ParseFloat(lonF, 64)
			if err != nil {
				return "", nil, err
			}
			alt, err := strconv.ParseFloat(altF, 64)
			if err != nil {
				return "", nil, err
			}
			speed, err := strconv.ParseFloat(speedF, 64)
			if err != nil {
				return "", nil, err
			}
			hacc, err := strconv.ParseFloat(haccF, 64)
			if err != nil {
				return "", nil, err
			}
			vacc, err := strconv.ParseFloat(vaccF, 64)
			if err != nil {
				return "", nil, err
			}

			p := NewFix(lat, lon, alt, speed, hacc, vacc, time.Unix(0, ts))
			s.points = append(s.points, p)
			s.minLat = math.Min(s.minLat, lat)
			s.minLon = math.Min(s.minLon, lon)
			s.maxLat = math.Max(s.maxLat, lat)
			s.maxLon = math.Max(s.maxLon, lon)
		}

		segments = append(segments, s)
	}

	return tripID, segments, nil
}

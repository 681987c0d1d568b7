// Package main demonstrates the use of the heatmap package to generate an SVG calendar.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/stsysd/bathtiles/heatmap"
)

func main() {
	// Generate a sample payload for the past year
	payload, err := heatmap.EncodePayload(generateYearData())
	if err != nil {
		log.Fatal(err)
	}

	cal, err := heatmap.NewCalendar(payload, nil)
	if err != nil {
		log.Fatal(err)
	}
	m, err := cal.Model()
	if err != nil {
		log.Fatal(err)
	}

	// Output to stdout
	fmt.Println(heatmap.GenerateCalendarSVG(m, cal.Palette(), cal.Options()))
}

// generateYearData creates random submission counts keyed by epoch seconds
func generateYearData() map[int64]int {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(-1, 0, 0)

	data := make(map[int64]int)
	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, 1) {
		// Higher probability of activity on weekends
		var count int
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			count = rand.Intn(10) // 0-9
		} else {
			count = rand.Intn(6) // 0-5
		}

		// Add occasional spikes of activity
		if rand.Intn(20) == 0 {
			count += rand.Intn(20)
		}

		if count != 0 {
			data[current.Unix()] = count
		}
	}
	return data
}

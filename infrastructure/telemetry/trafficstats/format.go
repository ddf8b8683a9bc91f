package trafficstats

import "fmt"

var binaryUnits = [...]string{"B", "KiB", "MiB", "GiB", "TiB"}

// String renders the snapshot as a single log line.
func (s Snapshot) String() string {
	return fmt.Sprintf(
		"tx %d pkts %s (%s/s) dropped %d | rx %d pkts %s (%s/s) dropped %d",
		s.TXPackets, humanBytes(s.TXBytesTotal), humanBytes(s.TXRate), s.TXDropped,
		s.RXPackets, humanBytes(s.RXBytesTotal), humanBytes(s.RXRate), s.RXDropped,
	)
}

// humanBytes scales n to the largest binary unit that keeps it at or above 1.
func humanBytes(n uint64) string {
	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(binaryUnits)-1 {
		v /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f %s", v, binaryUnits[unit])
}

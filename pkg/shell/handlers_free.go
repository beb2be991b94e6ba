package shell

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/marmos91/glasshouse/internal/bytesize"
)

type fakeMemoryStats struct {
	totalMem, usedMem, freeMem, sharedMem, buffCacheMem, availableMem int64
	totalSwap, usedSwap, freeSwap                                     int64
}

// generateFakeMemoryStats produces internally consistent but randomized
// totals, grounded on SPEC_FULL.md §4.2: available is roughly free plus
// 80% of buffer/cache, swap is roughly half of total memory.
func generateFakeMemoryStats() fakeMemoryStats {
	total := int64(2_000_000 + rand.Intn(14_000_000)) // 2GB..16GB in KB
	buffCache := total * int64(5+rand.Intn(20)) / 100
	usedRaw := total * int64(30+rand.Intn(40)) / 100
	used := usedRaw - buffCache
	if used < 0 {
		used = 0
	}
	free := total - usedRaw
	if free < 0 {
		free = 0
	}
	shared := total * int64(1+rand.Intn(9)) / 100
	available := free + buffCache*8/10

	totalSwap := total / 2
	var usedSwap int64
	if rand.Float64() < 0.7 {
		usedSwap = int64(rand.Intn(int(totalSwap/20) + 1))
	} else {
		lo := int(totalSwap / 10)
		hi := int(totalSwap / 2)
		if hi > lo {
			usedSwap = int64(lo + rand.Intn(hi-lo))
		}
	}
	freeSwap := totalSwap - usedSwap

	return fakeMemoryStats{
		totalMem: total, usedMem: used, freeMem: free, sharedMem: shared,
		buffCacheMem: buffCache, availableMem: available,
		totalSwap: totalSwap, usedSwap: usedSwap, freeSwap: freeSwap,
	}
}

// freeHandler renders `free`'s memory table. Unlike the source this is
// grounded on, wide mode gets genuinely wider columns than narrow mode:
// SPEC_FULL.md's design notes call out the source's identical wide/narrow
// headers as a latent defect not to replicate.
type freeHandler struct{}

func (freeHandler) Execute(args string, _ *Context) string {
	stats := generateFakeMemoryStats()

	humanReadable := false
	showTotal := false
	wide := false
	divisor := int64(1)
	unit := "kB"

	for _, tok := range strings.Fields(args) {
		switch tok {
		case "-h", "--human":
			humanReadable = true
		case "-b", "--bytes":
			divisor, unit = 1, "B"
		case "-k", "--kilo":
			divisor, unit = 1, "kB"
		case "-m", "--mega":
			divisor, unit = 1024, "MB"
		case "-g", "--giga":
			divisor, unit = 1024*1024, "GB"
		case "--tera":
			divisor, unit = 1024*1024*1024, "TB"
		case "-t", "--total":
			showTotal = true
		case "-w", "--wide":
			wide = true
		}
	}

	if humanReadable {
		return formatFreeHuman(stats, showTotal, wide)
	}
	return formatFreeWithUnit(stats, divisor, unit, showTotal, wide)
}

func freeHeader(wide bool) string {
	if wide {
		return fmt.Sprintf("%-18s%18s%18s%18s%18s%18s%18s\r\n",
			"", "total", "used", "free", "shared", "buff/cache", "available")
	}
	return fmt.Sprintf("%-8s%12s%12s%12s%10s%12s%12s\r\n",
		"", "total", "used", "free", "shared", "buff/cache", "available")
}

func formatFreeWithUnit(stats fakeMemoryStats, divisor int64, unit string, showTotal, wide bool) string {
	val := func(v int64) string {
		return fmt.Sprintf("%d %s", v/divisor, unit)
	}

	var b strings.Builder
	b.WriteString(freeHeader(wide))

	if wide {
		fmt.Fprintf(&b, "%-8s%18s%18s%18s%18s%18s%18s\r\n", "Mem:",
			val(stats.totalMem), val(stats.usedMem), val(stats.freeMem), val(stats.sharedMem), val(stats.buffCacheMem), val(stats.availableMem))
		fmt.Fprintf(&b, "%-8s%18s%18s%18s\r\n", "Swap:", val(stats.totalSwap), val(stats.usedSwap), val(stats.freeSwap))
		if showTotal {
			fmt.Fprintf(&b, "%-8s%18s%18s%18s\r\n", "Total:",
				val(stats.totalMem+stats.totalSwap), val(stats.usedMem+stats.usedSwap), val(stats.freeMem+stats.freeSwap))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%-8s%12s%12s%12s%10s%12s%12s\r\n", "Mem:",
		val(stats.totalMem), val(stats.usedMem), val(stats.freeMem), val(stats.sharedMem), val(stats.buffCacheMem), val(stats.availableMem))
	fmt.Fprintf(&b, "%-8s%12s%12s%12s\r\n", "Swap:", val(stats.totalSwap), val(stats.usedSwap), val(stats.freeSwap))
	if showTotal {
		fmt.Fprintf(&b, "%-8s%12s%12s%12s\r\n", "Total:",
			val(stats.totalMem+stats.totalSwap), val(stats.usedMem+stats.usedSwap), val(stats.freeMem+stats.freeSwap))
	}
	return b.String()
}

// humanKB renders a kB quantity the way `free -h` does, delegating to
// bytesize.ByteSize for unit scaling and formatting.
func humanKB(kb int64) string {
	return bytesize.ByteSize(kb * int64(bytesize.KiB)).String()
}

func formatFreeHuman(stats fakeMemoryStats, showTotal, wide bool) string {
	var b strings.Builder
	b.WriteString(freeHeader(wide))

	width := 10
	if wide {
		width = 18
	}
	pad := fmt.Sprintf("%%-8s%%%ds%%%ds%%%ds%%%ds%%%ds%%%ds\r\n", width, width, width, width, width, width)
	padSwap := fmt.Sprintf("%%-8s%%%ds%%%ds%%%ds\r\n", width, width, width)

	fmt.Fprintf(&b, pad, "Mem:",
		humanKB(stats.totalMem), humanKB(stats.usedMem), humanKB(stats.freeMem),
		humanKB(stats.sharedMem), humanKB(stats.buffCacheMem), humanKB(stats.availableMem))
	fmt.Fprintf(&b, padSwap, "Swap:", humanKB(stats.totalSwap), humanKB(stats.usedSwap), humanKB(stats.freeSwap))
	if showTotal {
		fmt.Fprintf(&b, padSwap, "Total:",
			humanKB(stats.totalMem+stats.totalSwap), humanKB(stats.usedMem+stats.usedSwap), humanKB(stats.freeMem+stats.freeSwap))
	}
	return b.String()
}

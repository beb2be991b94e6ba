package shell

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type fakeProcess struct {
	pid     int
	user    string
	command string
	cpu     float64
	mem     float64
	vsz     int
	rss     int
	tty     string
	stat    string
	start   time.Time
	elapsed time.Duration
}

func newFakeProcess(pid int, user, command string) fakeProcess {
	start := time.Now().Add(-time.Duration(rand.Intn(1440)) * time.Minute)
	tty := "?"
	if pid >= 300 && rand.Float64() >= 0.7 {
		tty = fmt.Sprintf("pts/%d", rand.Intn(4))
	}
	states := []string{"R", "S", "D", "Z", "T"}
	flags := []string{"", "+", "<", "s", "l", "N"}
	return fakeProcess{
		pid:     pid,
		user:    user,
		command: command,
		cpu:     rand.Float64() * 5,
		mem:     rand.Float64() * 2,
		vsz:     1000 + rand.Intn(299000),
		rss:     500 + rand.Intn(49500),
		tty:     tty,
		stat:    states[rand.Intn(len(states))] + flags[rand.Intn(len(flags))],
		start:   start,
		elapsed: time.Duration(rand.Intn(500)) * time.Minute,
	}
}

func (p fakeProcess) formatTime() string {
	minutes := int(p.elapsed.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("0:%02d", minutes)
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

func (p fakeProcess) formatStartTime() string {
	now := time.Now()
	if now.YearDay() == p.start.YearDay() && now.Year() == p.start.Year() {
		return p.start.Format("15:04")
	}
	return p.start.Format("Jan02")
}

var fakeSystemProcesses = []struct {
	pid     int
	user    string
	command string
}{
	{1, "root", "/sbin/init"},
	{2, "root", "[kthreadd]"},
	{10, "root", "[rcu_tasks_kthr]"},
	{11, "root", "[rcu_sched]"},
	{12, "root", "[migration/0]"},
	{16, "root", "[ksoftirqd/0]"},
	{17, "root", "[rcu_preempt]"},
	{18, "root", "[rcub/0]"},
	{20, "root", "[kworker/0:1H]"},
	{21, "root", "[kworker/u8:1]"},
	{89, "root", "/lib/systemd/systemd-journald"},
	{172, "systemd+", "/lib/systemd/systemd-resolved"},
	{208, "root", "/usr/sbin/cron -f"},
	{209, "root", "/usr/bin/dbus-daemon --system --address=systemd:"},
	{240, "root", "/usr/sbin/sshd -D"},
	{306, "root", `/sbin/agetty -o -p -- \u --noclear tty1 linux`},
	{400, "mysql", "/usr/sbin/mysqld"},
	{455, "www-data", "/usr/sbin/apache2 -k start"},
	{457, "www-data", "/usr/sbin/apache2 -k start"},
	{458, "www-data", "/usr/sbin/apache2 -k start"},
	{500, "user", "/lib/systemd/systemd --user"},
	{520, "user", "bash"},
}

var fakeUserCommands = []string{
	"vim config.txt",
	`grep -r "error" /var/log`,
	"tail -f /var/log/syslog",
	"node server.js",
	"python3 script.py",
	"java -jar app.jar",
	"cargo run",
	"npm start",
	"ssh user@remote",
	"/bin/bash",
	"[kworker/u8:0]",
}

func generateFakeProcesses(cmd string) []fakeProcess {
	var procs []fakeProcess
	for _, sys := range fakeSystemProcesses {
		procs = append(procs, newFakeProcess(sys.pid, sys.user, sys.command))
	}

	count := 3 + rand.Intn(5)
	for i := 0; i < count; i++ {
		pid := 1000 + rand.Intn(9000)
		user := "user"
		if rand.Float64() >= 0.8 {
			user = "root"
		}
		command := fakeUserCommands[rand.Intn(len(fakeUserCommands))]
		procs = append(procs, newFakeProcess(pid, user, command))
	}

	psPid := 1000 + rand.Intn(9000)
	procs = append(procs, newFakeProcess(psPid, "user", cmd))

	for i := 1; i < len(procs); i++ {
		for j := i; j > 0 && procs[j].pid < procs[j-1].pid; j-- {
			procs[j], procs[j-1] = procs[j-1], procs[j]
		}
	}
	return procs
}

// psHandler synthesizes a plausible process table, mirroring the fixed
// system PIDs plus randomized user PIDs described in SPEC_FULL.md §4.2.
type psHandler struct{}

func (psHandler) Execute(args string, _ *Context) string {
	fullCmd := strings.TrimSpace("ps " + args)
	procs := generateFakeProcesses(fullCmd)

	tokens := strings.Fields(args)
	if len(tokens) == 0 {
		return formatSimplePs(procs)
	}

	var showAll, longFormat, showForest, showHeader = false, false, false, true
	for _, tok := range tokens {
		switch tok {
		case "a", "-a", "-e", "-A":
			showAll = true
		case "u", "-u":
			longFormat = true
		case "x", "-x":
			// wide output: already unconstrained in this rendering
		case "f", "-f":
			showForest = true
		case "aux", "-aux":
			showAll, longFormat = true, true
		case "--no-headers":
			showHeader = false
		}
	}

	switch {
	case longFormat:
		return formatLongPs(procs, showAll, showHeader)
	case showForest:
		return formatForestPs(procs, showAll, showHeader)
	default:
		return formatSimplePs(procs)
	}
}

func formatSimplePs(procs []fakeProcess) string {
	var b strings.Builder
	b.WriteString("  PID TTY          TIME CMD\r\n")
	for _, p := range procs {
		if p.tty == "?" {
			continue
		}
		fmt.Fprintf(&b, "%5d %-4s       %5s %s\r\n", p.pid, p.tty, p.formatTime(), p.command)
	}
	return b.String()
}

func formatLongPs(procs []fakeProcess, showAll, showHeader bool) string {
	var b strings.Builder
	if showHeader {
		b.WriteString("USER       PID %CPU %MEM    VSZ   RSS TTY      STAT START   TIME COMMAND\r\n")
	}
	for _, p := range procs {
		if !showAll && p.tty == "?" {
			continue
		}
		fmt.Fprintf(&b, "%-8s %5d %4.1f %4.1f %6d %5d %-8s %-4s %5s   %5s %s\r\n",
			p.user, p.pid, p.cpu, p.mem, p.vsz, p.rss, p.tty, p.stat, p.formatStartTime(), p.formatTime(), p.command)
	}
	return b.String()
}

func formatForestPs(procs []fakeProcess, showAll, showHeader bool) string {
	byPID := make(map[int]fakeProcess, len(procs))
	children := make(map[int][]int)
	for _, p := range procs {
		byPID[p.pid] = p
		if p.pid > 1 {
			parent := p.pid / 10
			if parent >= 1 {
				children[parent] = append(children[parent], p.pid)
			}
		}
	}

	var b strings.Builder
	if showHeader {
		b.WriteString("  PID TTY      STAT   TIME COMMAND\r\n")
	}

	var walk func(pid, depth int)
	walk = func(pid, depth int) {
		p, ok := byPID[pid]
		if !ok {
			return
		}
		if showAll || p.tty != "?" {
			prefix := strings.Repeat("| ", depth)
			branch := ""
			if depth > 0 {
				branch = `\_ `
			}
			fmt.Fprintf(&b, "%5d %-8s %-4s %5s %s%s%s\r\n", p.pid, p.tty, p.stat, p.formatTime(), prefix, branch, p.command)
		}
		for _, child := range children[pid] {
			walk(child, depth+1)
		}
	}
	walk(1, 0)
	return b.String()
}

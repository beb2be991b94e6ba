package shell

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// unameHandler synthesizes kernel info with a randomized build number,
// weekday/month, and day/time embedded in the version string, matching
// SPEC_FULL.md §4.2; release is drawn from a small pool of plausible
// Ubuntu kernel releases so repeated calls within a session are not
// perfectly identical, mirroring the honeypot's per-invocation randomness.
type unameHandler struct{}

var unameKernelReleases = []string{
	"5.4.0-109-generic",
	"5.15.0-56-generic",
	"6.2.0-26-generic",
	"6.5.0-15-generic",
}

var unameWeekdays = []string{"Mon", "Wed", "Fri"}
var unameMonths = []string{"Mar", "Apr", "May"}

const (
	unameKernelName = "Linux"
	unameMachine    = "x86_64"
	unameOS         = "GNU/Linux"
)

func unameVersionString() string {
	build := 100 + rand.Intn(200)
	weekday := unameWeekdays[rand.Intn(len(unameWeekdays))]
	month := unameMonths[rand.Intn(len(unameMonths))]
	day := 1 + rand.Intn(27)
	hour := 8 + rand.Intn(10)
	minute := 10 + rand.Intn(49)
	second := 10 + rand.Intn(49)
	return fmt.Sprintf("#%d-Ubuntu SMP %s %s %d %02d:%02d:%02d UTC %d",
		build, weekday, month, day, hour, minute, second, time.Now().Year())
}

func unameRelease() string {
	return unameKernelReleases[rand.Intn(len(unameKernelReleases))]
}

func (unameHandler) Execute(args string, ctx *Context) string {
	args = strings.TrimSpace(args)
	release := unameRelease()
	version := unameVersionString()

	if args == "" {
		return unameKernelName + "\r\n"
	}
	if strings.Contains(args, "-a") || strings.Contains(args, "--all") {
		parts := []string{unameKernelName, ctx.Hostname, release, version, unameMachine, unameMachine, unameMachine, unameOS}
		return strings.Join(parts, " ") + "\r\n"
	}

	var parts []string
	add := func(v string) {
		for _, p := range parts {
			if p == v {
				return
			}
		}
		parts = append(parts, v)
	}

	if strings.Contains(args, "-s") || strings.Contains(args, "--kernel-name") {
		add(unameKernelName)
	}
	if strings.Contains(args, "-n") || strings.Contains(args, "--nodename") {
		add(ctx.Hostname)
	}
	if strings.Contains(args, "-r") || strings.Contains(args, "--kernel-release") {
		add(release)
	}
	if strings.Contains(args, "-v") || strings.Contains(args, "--kernel-version") {
		add(version)
	}
	if strings.Contains(args, "-m") || strings.Contains(args, "--machine") {
		add(unameMachine)
	}
	if strings.Contains(args, "-p") || strings.Contains(args, "--processor") {
		add(unameMachine)
	}
	if strings.Contains(args, "-i") || strings.Contains(args, "--hardware-platform") {
		add(unameMachine)
	}
	if strings.Contains(args, "-o") || strings.Contains(args, "--operating-system") {
		add(unameOS)
	}

	if len(parts) == 0 {
		parts = append(parts, unameKernelName)
	}
	return strings.Join(parts, " ") + "\r\n"
}

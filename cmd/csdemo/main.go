// Command csdemo parses a CS2 (Source 2) demo file and prints the decoded
// header, columns, game events and projectile table as JSON.
//
// Usage:
//
//	csdemo [FLAGS] demofile.dem
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/csdemo/csdemo/demo"
)

const (
	appName    = "csdemo"
	appVersion = "v0.1.0"
)

type options struct {
	Version bool `short:"v" long:"version" description:"print version info and exit"`

	PlayerProps string `short:"p" long:"player-props" description:"comma-separated player prop names (friendly aliases allowed)"`
	OtherProps  string `short:"o" long:"other-props" description:"comma-separated non-player prop names"`
	Events      string `short:"e" long:"events" description:"comma-separated wanted event names, or 'all'"`
	Ticks       string `short:"t" long:"ticks" description:"comma-separated tick numbers; empty means every tick"`

	NoEntities   bool `long:"no-entities" description:"skip Pass 2 entirely (no columns, game events or projectiles)"`
	Projectiles  bool `long:"projectiles" description:"build the projectile side table"`
	OnlyHeader   bool `long:"only-header" description:"stop after the file header"`
	OnlyConVars  bool `long:"only-convars" description:"stop once class info and the event list are seen"`
	Parallel     bool `long:"parallel" description:"decode Pass 2 in keyframe-sharded parallel mode"`
	MaxShards    int  `long:"max-shards" description:"cap on concurrent shards (0 = one per keyframe)" default:"0"`
	DebugNulls   bool `long:"debug-nulls" description:"log a debug event per null output cell to the package logger, which this command leaves a no-op (no reason is attached)"`

	Indent bool `long:"indent" description:"pretty-print the JSON output" default:"true"`

	Args struct {
		File string `positional-arg-name:"demofile" description:"CS2 .dem file" required:"true"`
	} `positional-args:"yes"`
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitTicks(s string) []int32 {
	if s == "" {
		return nil
	}
	var out []int32
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var n int32
		neg := false
		for i, r := range p {
			if i == 0 && r == '-' {
				neg = true
				continue
			}
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int32(r-'0')
		}
		if neg {
			n = -n
		}
		out = append(out, n)
	}
	return out
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = appName
	parser.LongDescription = "Parses a CS2 demo file's entity deltas, game events and projectile table, emitting the result as JSON."

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(appName, "version:", appVersion)
		return
	}

	data, err := os.ReadFile(opts.Args.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg := demo.ParserConfig{
		WantedPlayerProps: splitList(opts.PlayerProps),
		WantedOtherProps:  splitList(opts.OtherProps),
		WantedEvents:      splitList(opts.Events),
		WantedTicks:       splitTicks(opts.Ticks),
		ParseEntities:     !opts.NoEntities,
		ParseProjectiles:  opts.Projectiles,
		OnlyHeader:        opts.OnlyHeader,
		OnlyConVars:       opts.OnlyConVars,
		DebugNulls:        opts.DebugNulls,
		Parallel:          opts.Parallel,
		MaxShards:         opts.MaxShards,
	}

	d, err := demo.NewFromBytes(data, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse demo: %v\n", err)
		os.Exit(2)
	}

	out := struct {
		Header      map[string]interface{} `json:"header"`
		ConVars     map[string]string      `json:"convars,omitempty"`
		PropInfos   interface{}            `json:"prop_infos,omitempty"`
		Columns     interface{}            `json:"columns,omitempty"`
		GameEvents  interface{}            `json:"game_events,omitempty"`
		Projectiles interface{}            `json:"projectiles,omitempty"`
		EndOfMatch  interface{}            `json:"end_of_match_players,omitempty"`
		Stats       interface{}            `json:"stats"`
	}{
		Header: headerToMap(d),
		Stats:  d.Stats(),
	}
	if !opts.OnlyHeader {
		out.ConVars = d.ConVars()
		out.PropInfos = d.PropInfos()
		out.Columns = d.Columns()
		out.GameEvents = d.GameEvents()
		if opts.Projectiles {
			out.Projectiles = d.Projectiles()
		}
		out.EndOfMatch = d.EndOfMatchPlayers()
	}

	enc := json.NewEncoder(os.Stdout)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func headerToMap(d *demo.Demo) map[string]interface{} {
	out := make(map[string]interface{}, len(d.Header()))
	for k, v := range d.Header() {
		out[k] = v
	}
	return out
}

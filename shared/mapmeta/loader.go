package mapmeta

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/lafriks/go-tiled"
)

// Object groups read from the TMX overlay.
const (
	groupBlueSpawns     = "arena_blue_spawns"
	groupGreenSpawns    = "arena_green_spawns"
	groupBlueBombsites  = "arena_blue_bombsites"
	groupGreenBombsites = "arena_green_bombsites"
	groupObjectives     = "arena_objectives"
)

// LoadTMX reads a map's arena metadata from a Tiled overlay. One tile is one
// voxel column; object coordinates are converted from pixels to voxels and
// carry their height in a "z" property. It takes an fs.FS so callers can pass
// embed.FS or os.DirFS.
func LoadTMX(fsys fs.FS, tmxPath string) (*Map, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	name := strings.TrimSuffix(path.Base(tmxPath), ".tmx")
	if n := levelMap.Properties.GetString("name"); n != "" {
		name = n
	}
	m := &Map{Name: name}

	props := levelMap.Properties
	var durations = []struct {
		key string
		dst **time.Duration
	}{
		{"arena_break_time", &m.BreakTime},
		{"arena_time_limit", &m.TimeLimit},
		{"arena_map_change_delay", &m.MapChangeDelay},
		{"arena_heartbeat_rate", &m.HeartbeatRate},
		{"arena_respawn_time", &m.RespawnTime},
	}
	for _, d := range durations {
		if props.GetString(d.key) == "" {
			continue
		}
		v := seconds(props.GetFloat(d.key))
		*d.dst = &v
	}

	if props.GetString("building_enabled") != "" {
		v := props.GetBool("building_enabled")
		m.BuildingEnabled = &v
	}
	m.HasRefill = props.GetBool("arena_has_refill")
	m.SwapSpawns = props.GetBool("swap_spawns")
	m.WaterDamage = props.GetInt("water_damage")
	for _, c := range strings.Split(props.GetString("disabled_commands"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			m.DisabledCommands = append(m.DisabledCommands, c)
		}
	}

	for _, single := range []struct {
		key  string
		team netconfig.TeamID
	}{
		{"arena_blue_spawn", netconfig.TeamBlue},
		{"arena_green_spawn", netconfig.TeamGreen},
	} {
		raw := props.GetString(single.key)
		if raw == "" {
			continue
		}
		p, err := parsePoint(raw)
		if err != nil {
			return nil, &ConfigError{Map: name, Key: single.key, Err: err}
		}
		m.Team(single.team).Spawns = []gamemath.Point{p}
	}

	scaleX := 1 / float64(max(levelMap.TileWidth, 1))
	scaleY := 1 / float64(max(levelMap.TileHeight, 1))

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case groupBlueSpawns, groupGreenSpawns:
			team := &m.Blue
			if og.Name == groupGreenSpawns {
				team = &m.Green
			}
			// A spawn list replaces the single spawn property.
			team.Spawns = nil
			for _, o := range og.Objects {
				team.Spawns = append(team.Spawns, gamemath.Point{
					X: int(o.X * scaleX),
					Y: int(o.Y * scaleY),
					Z: o.Properties.GetInt("z"),
				})
			}

		case groupBlueBombsites, groupGreenBombsites:
			team := &m.Blue
			if og.Name == groupGreenBombsites {
				team = &m.Green
			}
			team.HasBombsites = true
			objects := append([]*tiled.Object(nil), og.Objects...)
			// Bombsites are matched first-wins, so keep the author's order.
			sort.SliceStable(objects, func(i, j int) bool {
				return objects[i].Properties.GetInt("order") < objects[j].Properties.GetInt("order")
			})
			for _, o := range objects {
				team.Bombsites = append(team.Bombsites, Box{
					Min: gamemath.Vec3{X: o.X * scaleX, Y: o.Y * scaleY, Z: o.Properties.GetFloat("zmin")},
					Max: gamemath.Vec3{
						X: (o.X + o.Width) * scaleX,
						Y: (o.Y + o.Height) * scaleY,
						Z: o.Properties.GetFloat("zmax"),
					},
				})
			}

		case groupObjectives:
			for _, o := range og.Objects {
				pos := gamemath.Vec3{X: o.X * scaleX, Y: o.Y * scaleY, Z: o.Properties.GetFloat("z")}
				switch o.Name {
				case "blue_flag":
					m.Blue.Flag = &pos
				case "green_flag":
					m.Green.Flag = &pos
				case "blue_base":
					m.Blue.Base = &pos
				case "green_base":
					m.Green.Base = &pos
				}
			}
		}
	}

	if script := props.GetString("arena_script"); script != "" {
		scriptPath := path.Join(path.Dir(tmxPath), script)
		src, err := fs.ReadFile(fsys, scriptPath)
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", scriptPath, err)
		}
		ls, err := NewLuaScript(scriptPath, string(src))
		if err != nil {
			return nil, &ConfigError{Map: name, Key: "arena_script", Err: err}
		}
		m.Script = ls
	}

	return m, nil
}

// LoadAll discovers all .tmx files in dir within fsys and loads their
// metadata, returning a map keyed by stem name plus a sorted list of names.
// Maps are not validated here; the round controller rejects unplayable
// maps when they are loaded.
func LoadAll(fsys fs.FS, dir string) (map[string]*Map, []string, error) {
	pattern := path.Join(dir, "*.tmx")
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	maps := make(map[string]*Map, len(matches))
	names := make([]string, 0, len(matches))

	for _, p := range matches {
		m, err := LoadTMX(fsys, p)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", p, err)
		}
		stem := strings.TrimSuffix(path.Base(p), ".tmx")
		maps[stem] = m
		names = append(names, stem)
	}

	sort.Strings(names)
	return maps, names, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// parsePoint reads "x y z" or "x,y,z".
func parsePoint(raw string) (gamemath.Point, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return gamemath.Point{}, fmt.Errorf("want 3 coordinates, got %q", raw)
	}
	var v [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return gamemath.Point{}, fmt.Errorf("parse %q: %w", raw, err)
		}
		v[i] = n
	}
	return gamemath.Point{X: v[0], Y: v[1], Z: v[2]}, nil
}

// Package scripting hosts the Lua VM that supplies the tunable simulation
// formulas: care decay rates, rest durations, battle damage, and experience
// curves. Content authors edit scripts; the Go side only asks questions.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/petgo/petgo/internal/care"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only (the
// engine tick path).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree: top-level files first, then the care and battle
// subdirectories.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	for _, sub := range []string{"care", "battle"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory. Missing directories are
// skipped.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// CareRates asks Lua for the decay model of a species at a life stage:
// care_rates(species_id, stage) -> table. Missing fields fall back to the
// defaults.
func (e *Engine) CareRates(speciesID string, stage int) (care.Rates, error) {
	def := care.DefaultRates()
	tbl, err := e.callTable("care_rates", lua.LString(speciesID), lua.LNumber(stage))
	if err != nil {
		return def, err
	}
	r := care.Rates{
		HungerPerTick:        tblFloat(tbl, "hunger", def.HungerPerTick),
		HappinessPerTick:     tblFloat(tbl, "happiness", def.HappinessPerTick),
		EnergyPerTick:        tblFloat(tbl, "energy", def.EnergyPerTick),
		SleepRecoveryPerTick: tblFloat(tbl, "sleep_recovery", def.SleepRecoveryPerTick),
		SleepHungerMult:      tblFloat(tbl, "sleep_hunger_mult", def.SleepHungerMult),
		StarveHealthPerTick:  tblFloat(tbl, "starve_health", def.StarveHealthPerTick),
		SickThreshold:        tblFloat(tbl, "sick_threshold", def.SickThreshold),
		WasteEveryTicks:      uint64(tblFloat(tbl, "waste_every_ticks", float64(def.WasteEveryTicks))),
		WasteSickCount:       int(tblFloat(tbl, "waste_sick_count", float64(def.WasteSickCount))),
	}
	return r, nil
}

// RestTicks asks Lua how many ticks a full rest takes:
// rest_ticks(species_id, stage) -> number.
func (e *Engine) RestTicks(speciesID string, stage int) (uint64, error) {
	n, err := e.callNumber("rest_ticks", lua.LString(speciesID), lua.LNumber(stage))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		n = 1
	}
	return uint64(n), nil
}

// BattleDamage computes one side's battle score:
// battle_damage(level, attack, opponent_defense, roll) -> number.
func (e *Engine) BattleDamage(level, attack, defense int, roll float64) (float64, error) {
	return e.callNumber("battle_damage",
		lua.LNumber(level), lua.LNumber(attack), lua.LNumber(defense), lua.LNumber(roll))
}

// WinExp is the experience granted for defeating an opponent:
// win_exp(level, opponent_level) -> number.
func (e *Engine) WinExp(level, oppLevel int) (int64, error) {
	n, err := e.callNumber("win_exp", lua.LNumber(level), lua.LNumber(oppLevel))
	return int64(n), err
}

// ExpToLevel is the cumulative experience required to reach a level:
// exp_to_level(level) -> number.
func (e *Engine) ExpToLevel(level int) (int64, error) {
	n, err := e.callNumber("exp_to_level", lua.LNumber(level))
	return int64(n), err
}

func (e *Engine) callTable(name string, args ...lua.LValue) (*lua.LTable, error) {
	ret, err := e.call(name, args...)
	if err != nil {
		return nil, err
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua %s: expected table, got %s", name, ret.Type())
	}
	return tbl, nil
}

func (e *Engine) callNumber(name string, args ...lua.LValue) (float64, error) {
	ret, err := e.call(name, args...)
	if err != nil {
		return 0, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("lua %s: expected number, got %s", name, ret.Type())
	}
	return float64(n), nil
}

func (e *Engine) call(name string, args ...lua.LValue) (lua.LValue, error) {
	fn := e.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("lua function %s not defined", name)
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return nil, fmt.Errorf("lua %s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, nil
}

func tblFloat(tbl *lua.LTable, key string, def float64) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/TheBitDrifter/depot"
)

const (
	cfgKeyBodies   = "bodies"
	cfgKeyTicks    = "ticks"
	cfgKeyDT       = "dt"
	cfgKeyG        = "g"
	cfgKeyWorlds   = "worlds"
	cfgKeySeed     = "seed"
	cfgKeyLogLevel = "log_level"

	cfgKeyInitialCapacity = "initial_capacity"
	cfgKeyRecycleIDs      = "recycle_entity_ids"
	cfgKeyQueryCacheCap   = "query_cache_capacity"

	defaultBodies = 64
	defaultTicks  = 500
	defaultDT     = 0.01
	defaultG      = 1.0
)

type simParams struct {
	Bodies int
	Ticks  int
	DT     float64
	G      float64
	Worlds int
	Seed   uint64

	World depot.Config
}

func registerSimFlags(flags *pflag.FlagSet) {
	flags.Int(cfgKeyBodies, defaultBodies, "bodies per world")
	flags.Int(cfgKeyTicks, defaultTicks, "ticks to simulate")
	flags.Float64(cfgKeyDT, defaultDT, "seconds per tick")
	flags.Float64(cfgKeyG, defaultG, "gravitational constant")
	flags.Int(cfgKeyWorlds, 1, "independent worlds to run concurrently")
	flags.Uint64(cfgKeySeed, 1, "random seed of the first world")
	flags.String("log-level", "info", "debug, info, warn or error")
}

// loadParams merges defaults, the optional config file and explicitly set
// flags, in increasing precedence.
func loadParams(flags *pflag.FlagSet, path string) (simParams, error) {
	v := viper.New()
	defaults := depot.DefaultConfig()
	v.SetDefault(cfgKeyInitialCapacity, defaults.InitialCapacity)
	v.SetDefault(cfgKeyRecycleIDs, defaults.RecycleEntityIDs)
	v.SetDefault(cfgKeyQueryCacheCap, defaults.QueryCacheCapacity)
	v.SetDefault(cfgKeyLogLevel, defaults.LogLevel)

	for _, key := range []string{cfgKeyBodies, cfgKeyTicks, cfgKeyDT, cfgKeyG, cfgKeyWorlds, cfgKeySeed} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return simParams{}, err
		}
	}
	if err := v.BindPFlag(cfgKeyLogLevel, flags.Lookup("log-level")); err != nil {
		return simParams{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return simParams{}, fmt.Errorf("read config: %w", err)
		}
	}

	params := simParams{
		Bodies: v.GetInt(cfgKeyBodies),
		Ticks:  v.GetInt(cfgKeyTicks),
		DT:     v.GetFloat64(cfgKeyDT),
		G:      v.GetFloat64(cfgKeyG),
		Worlds: v.GetInt(cfgKeyWorlds),
		Seed:   v.GetUint64(cfgKeySeed),
		World: depot.Config{
			InitialCapacity:    v.GetInt(cfgKeyInitialCapacity),
			RecycleEntityIDs:   v.GetBool(cfgKeyRecycleIDs),
			QueryCacheCapacity: v.GetInt(cfgKeyQueryCacheCap),
			LogLevel:           v.GetString(cfgKeyLogLevel),
		},
	}
	return params, params.validate()
}

func (p simParams) validate() error {
	if p.Bodies < 1 {
		return errors.New("bodies must be at least 1")
	}
	if p.Ticks < 0 {
		return errors.New("ticks must not be negative")
	}
	if p.Worlds < 1 {
		return errors.New("worlds must be at least 1")
	}
	if p.DT <= 0 {
		return errors.New("dt must be positive")
	}
	return p.World.Validate()
}

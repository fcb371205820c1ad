package config

import (
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/lixenwraith/mpc-car/core"
)

// Schema constrains a complete configuration, definitions are closed so unknown fields are rejected
const Schema = `
#Config: {
	scene: {
		width:  number & >0
		height: number & >0
	}
	vehicle: {
		wheelbase:  number & >0
		integrator: "rk4" | "euler"
	}
	controller: {
		horizon:   int & >=1 & <=200
		time_step: number & >0 & <=1
		weights: {
			position:             number & >=0
			heading:              number & >=0
			steering:             number & >=0
			speed:                number & >=0
			steering_rate:        number & >=0
			speed_change:         number & >=0
			steering_rate_change: number & >=0
		}
		bounds: {
			v_max:     number & >0
			v_min:     number & <0 & <v_max
			phi_max:   number & >0
			delta_max: number & >0 & <1.5707963267948966
		}
	}
	initial: {
		random: bool
		seed:   int
		state: {
			x:     number
			y:     number
			theta: number
			delta: number
		}
	}
	target: {
		x:     number & >=0 & <=scene.width
		y:     number & >=0 & <=scene.height
		theta: number
		delta: number
	}
	loop: {
		failure_policy: "stop" | "hold"
		cancel_key:     =~"^.?$"
		max_ticks:      int & >=0
		history_size:   int & >=0
	}
	display: {
		headless: bool
		title:    string
		columns:  int & >=0
		rows:     int & >=0
	}
	audio: enabled: bool
	log: {
		level: "debug" | "info" | "warn" | "error"
		file:  string
	}
}
`

// Validate unifies the configuration with the schema and requires a concrete result
func Validate(cfg Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(Schema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return core.Invalid("config schema: %v", err)
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return core.Invalid("encode config: %v", err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return core.Invalid("config: %s", details(err))
	}
	return nil
}

// details flattens every CUE error into one line
func details(err error) string {
	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msgs = append(msgs, strings.TrimSpace(e.Error()))
	}
	if len(msgs) == 0 {
		return err.Error()
	}
	return strings.Join(msgs, "; ")
}

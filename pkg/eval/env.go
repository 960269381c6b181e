package eval

import (
	"os"
	"sort"
	"strings"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

// EnvPWD is the environment variable that mirrors the working directory.
const EnvPWD = "PWD"

func environFromOS() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

// Getenv returns the value of an environment variable. PWD is always the
// working directory.
func (ev *Evaler) Getenv(name string) (string, bool) {
	ev.mu.RLock()
	defer ev.mu.RUnlock()
	if name == EnvPWD {
		return ev.cwd, true
	}
	v, ok := ev.env[name]
	return v, ok
}

// Setenv sets an environment variable. Setting PWD changes the working
// directory.
func (ev *Evaler) Setenv(name, value string) error {
	if name == EnvPWD {
		return ev.Chdir(value)
	}
	if name == "" || strings.ContainsAny(name, "=\x00") {
		return errs.BadValue{What: "environment variable name", Valid: "non-empty without = or NUL",
			Actual: name}
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.env[name] = value
	return nil
}

// Unsetenv removes an environment variable.
func (ev *Evaler) Unsetenv(name string) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	delete(ev.env, name)
}

// EnvSnapshot returns a copy of the environment in the NAME=value form used
// by os/exec, sorted by name, with PWD set to the working directory.
func (ev *Evaler) EnvSnapshot() []string {
	ev.mu.RLock()
	defer ev.mu.RUnlock()
	kvs := make([]string, 0, len(ev.env)+1)
	for name, value := range ev.env {
		if name != EnvPWD {
			kvs = append(kvs, name+"="+value)
		}
	}
	kvs = append(kvs, EnvPWD+"="+ev.cwd)
	sort.Strings(kvs)
	return kvs
}

// EnvRecord returns the environment as a record with fields sorted by name.
func (ev *Evaler) EnvRecord() vals.Record {
	var rb vals.RecordBuilder
	for _, kv := range ev.EnvSnapshot() {
		i := strings.IndexByte(kv, '=')
		rb.Add(kv[:i], vals.String{Val: kv[i+1:], Ranging: diag.NoRange})
	}
	return rb.MustRecord()
}

// Replaces the whole environment with the fields of a record.
func (ev *Evaler) setEnvRecord(v vals.Value) error {
	r, ok := v.(vals.Record)
	if !ok {
		return errs.TypeMismatch{What: "$env", Want: "record", Got: vals.KindName(v)}
	}
	newEnv := make(map[string]string, r.Len())
	pwd := ""
	for i := 0; i < r.Len(); i++ {
		name, field := r.At(i)
		s, err := envString(name, field)
		if err != nil {
			return err
		}
		if name == EnvPWD {
			pwd = s
		} else {
			newEnv[name] = s
		}
	}
	if pwd != "" {
		if err := ev.Chdir(pwd); err != nil {
			return err
		}
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.env = newEnv
	return nil
}

// Environment variables hold strings; scalars are converted with their
// default string form.
func envString(name string, v vals.Value) (string, error) {
	switch v.(type) {
	case vals.List, vals.Record, vals.Error, vals.Nothing, nil:
		return "", errs.TypeMismatch{What: "$env." + name, Valid: "string or other scalar",
			Got: vals.KindName(v)}
	}
	if v.Kind() == vals.KindClosure {
		return "", errs.TypeMismatch{What: "$env." + name, Valid: "string or other scalar",
			Got: vals.KindName(v)}
	}
	return vals.ToString(v), nil
}

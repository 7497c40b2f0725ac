// Package evidence implements the EvidenceValidator: a scan over a
// directory of validation artifacts (JSON or text) that must collectively
// signal success before a run may terminate Complete.
package evidence

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
)

// ErrorTokens are the case-insensitive text tokens that mark a plain-text
// artifact as failing.
var ErrorTokens = []string{"ERROR", "CRITICAL", "BLOCKED", "IMPORTANT", "FAILED", "Exception", "timeout"}

// Result is one validator's verdict; multiple Results compose via Merge.
type Result struct {
	Success  bool
	Errors   []string
	Warnings []string
}

// Merge composes results with a logical AND over Success and concatenation
// over messages, using multierr for the message-joining machinery.
func Merge(results ...Result) Result {
	merged := Result{Success: true}
	var errs, warns error
	for _, r := range results {
		merged.Success = merged.Success && r.Success
		for _, e := range r.Errors {
			errs = multierr.Append(errs, stringError(e))
		}
		for _, w := range r.Warnings {
			warns = multierr.Append(warns, stringError(w))
		}
	}
	merged.Errors = splitErrors(errs)
	merged.Warnings = splitErrors(warns)
	return merged
}

type stringError string

func (e stringError) Error() string { return string(e) }

func splitErrors(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	for _, e := range multierr.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}

// Config controls how deep the directory scan goes and whether an empty
// evidence directory is treated as success (the documented legacy
// soft-spot) or failure.
type Config struct {
	Recursive          bool
	FailOnEmptyEvidence bool
}

// Validate scans dir per Config and returns the aggregate Result.
func Validate(dir string, cfg Config) Result {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{Success: false, Errors: []string{"no_evidence"}}
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			if cfg.Recursive {
				sub, _ := os.ReadDir(filepath.Join(dir, e.Name()))
				for _, se := range sub {
					if !se.IsDir() {
						files = append(files, filepath.Join(e.Name(), se.Name()))
					}
				}
			}
			continue
		}
		files = append(files, e.Name())
	}

	if len(files) == 0 {
		if cfg.FailOnEmptyEvidence {
			return Result{Success: false, Errors: []string{"no_evidence"}}
		}
		return Result{Success: true, Warnings: []string{"evidence directory is empty"}}
	}

	var results []Result
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			results = append(results, Result{Success: false, Errors: []string{name + ": " + err.Error()}})
			continue
		}
		if strings.HasSuffix(name, ".json") {
			results = append(results, validateJSON(name, data))
		} else {
			results = append(results, validateText(name, data))
		}
	}
	return Merge(results...)
}

func validateJSON(name string, data []byte) Result {
	if !gjson.ValidBytes(data) {
		return Result{Success: false, Errors: []string{name + ": invalid JSON"}}
	}
	parsed := gjson.ParseBytes(data)

	if !parsed.Exists() || parsed.Type.String() == "Null" {
		return Result{Success: false, Errors: []string{name + ": top-level is null"}}
	}
	if parsed.IsObject() && len(parsed.Map()) == 0 {
		return Result{Success: false, Errors: []string{name + ": top-level is an empty object"}}
	}

	if v := parsed.Get("error"); v.Exists() && v.String() != "" {
		return Result{Success: false, Errors: []string{name + ": error=" + v.String()}}
	}
	if v := parsed.Get("is_error"); v.Exists() && v.Bool() {
		return Result{Success: false, Errors: []string{name + ": is_error=true"}}
	}
	if v := parsed.Get("status"); v.Exists() && (v.String() == "error" || v.String() == "fail") {
		return Result{Success: false, Errors: []string{name + ": status=" + v.String()}}
	}
	if v := parsed.Get("detail"); v.Exists() && strings.Contains(strings.ToLower(v.String()), "not found") {
		return Result{Success: false, Errors: []string{name + ": detail contains 'not found'"}}
	}
	if v := parsed.Get("success"); v.Exists() && !v.Bool() {
		hasPositive := false
		parsed.ForEach(func(key, value gjson.Result) bool {
			if key.String() != "success" && value.Type == gjson.True {
				hasPositive = true
				return false
			}
			return true
		})
		if !hasPositive {
			return Result{Success: false, Errors: []string{name + ": success=false"}}
		}
	}

	return Result{Success: true}
}

func validateText(name string, data []byte) Result {
	text := string(data)
	lower := strings.ToLower(text)

	var errs []string
	for _, tok := range ErrorTokens {
		idx := strings.Index(lower, strings.ToLower(tok))
		if idx < 0 {
			continue
		}
		end := idx + 100
		if end > len(text) {
			end = len(text)
		}
		excerpt := text[idx:end]
		errs = append(errs, name+": found "+tok+": "+excerpt)
	}
	if len(errs) > 0 {
		return Result{Success: false, Errors: errs}
	}
	return Result{Success: true}
}

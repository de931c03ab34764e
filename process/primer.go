package process

import "github.com/Weeks-UNC/shapemapper2-core/mutation"

// withinOffset reports whether a read bound lies within maxOffset positions
// of an expected primer bound.
func withinOffset(got, want, maxOffset int32) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= maxOffset
}

// meetsPrimerRequirements implements the `--require-forward-primer-mapped`
// / `--require-reverse-primer-mapped` / `--max-primer-offset` knobs of
// spec.md §6: a read assigned to a primer pair must start (or end) within
// maxOffset of that pair's expected forward/reverse footprint, when the
// corresponding requirement is enabled.
func meetsPrimerRequirements(r *mutation.Read, primers []mutation.PrimerPair, cfg Config) bool {
	if !cfg.RequireForwardPrimerMapped && !cfg.RequireReversePrimerMapped {
		return true
	}
	if r.PrimerPair < 0 || r.PrimerPair >= len(primers) {
		return false
	}
	pp := primers[r.PrimerPair]
	if cfg.RequireForwardPrimerMapped && !withinOffset(r.Left, pp.FwLeft, cfg.MaxPrimerOffset) {
		return false
	}
	if cfg.RequireReversePrimerMapped && !withinOffset(r.Right, pp.RvRight, cfg.MaxPrimerOffset) {
		return false
	}
	return true
}

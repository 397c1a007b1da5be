// Package pricing holds the monthly hosting cost rule for uploaded videos.
//
// The first FreeMinutes of a video are free. Every started block of
// BlockMinutes beyond that costs UnitFee per month:
//
//	cost = ceil(max(0, minutes - FreeMinutes) / BlockMinutes) * UnitFee
package pricing

const (
	FreeMinutes    = 70
	BlockMinutes   = 70
	DefaultUnitFee = 1000
)

type Rule struct {
	FreeMinutes  int `json:"free_minutes" mapstructure:"free_minutes"`
	BlockMinutes int `json:"block_minutes" mapstructure:"block_minutes"`
	UnitFee      int `json:"unit_fee" mapstructure:"unit_fee"`
}

func DefaultRule() Rule {
	return Rule{FreeMinutes: FreeMinutes, BlockMinutes: BlockMinutes, UnitFee: DefaultUnitFee}
}

// MonthlyCost returns the monthly cost for a video of the given length.
// Non-positive durations cost nothing. A negative fee is treated as zero.
func (r Rule) MonthlyCost(minutes int) int {
	block := r.BlockMinutes
	if block <= 0 {
		block = BlockMinutes
	}
	free := r.FreeMinutes
	if free < 0 {
		free = 0
	}
	over := minutes - free
	if over <= 0 {
		return 0
	}
	if r.UnitFee <= 0 {
		return 0
	}
	blocks := (over + block - 1) / block
	return blocks * r.UnitFee
}

// MonthlyCost applies the default rule.
func MonthlyCost(minutes int) int {
	return DefaultRule().MonthlyCost(minutes)
}

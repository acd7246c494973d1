package domain

type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
	CheckSkip CheckStatus = "skip"
)

// Check is one line of the connection check report.
type Check struct {
	Group  string      `json:"group" yaml:"group"`
	Name   string      `json:"name" yaml:"name"`
	Status CheckStatus `json:"status" yaml:"status"`
	Detail string      `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type CheckReport struct {
	Checks []Check `json:"checks" yaml:"checks"`
}

// Failed reports whether any check failed. Warnings and skips do not count.
func (r CheckReport) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == CheckFail {
			return true
		}
	}
	return false
}

func (r CheckReport) Count(status CheckStatus) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

func (r *CheckReport) add(group, name string, status CheckStatus, detail string) {
	r.Checks = append(r.Checks, Check{Group: group, Name: name, Status: status, Detail: detail})
}

func (r *CheckReport) Pass(group, name, detail string) { r.add(group, name, CheckPass, detail) }

func (r *CheckReport) Warn(group, name, detail string) { r.add(group, name, CheckWarn, detail) }

func (r *CheckReport) Fail(group, name, detail string) { r.add(group, name, CheckFail, detail) }

func (r *CheckReport) Skip(group, name, detail string) { r.add(group, name, CheckSkip, detail) }

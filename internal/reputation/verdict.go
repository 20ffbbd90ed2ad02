package reputation

import (
	"fmt"

	"github.com/example/phishguard/internal/classify"
)

// CheckResult maps the provider answer onto the verdict shape used by checks.
// A listed, valid phish is reported with full confidence; an unknown URL is
// reported as safe with zero confidence since nothing vouches for it.
func (r *Response) CheckResult() classify.CheckResult {
	res := r.Results
	switch {
	case res.InDatabase.Bool() && res.Valid.Bool():
		details := "URL is listed in PhishTank as a confirmed phish"
		if id := res.PhishID.String(); id != "" {
			details = fmt.Sprintf("URL is listed in PhishTank as phish #%s", id)
		}
		return classify.NewResult(true, 100, details, res.Target.String(), res.Verified.Bool())
	case res.InDatabase.Bool():
		return classify.NewResult(false, 100, "URL is listed in PhishTank but was judged not to be a phish", "", res.Verified.Bool())
	default:
		return classify.NewResult(false, 0, "URL is not in the PhishTank database", "", false)
	}
}

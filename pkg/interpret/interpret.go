// Package interpret extracts draw results from the lucky-draw endpoint's
// text/x-component payload. The body is a server-rendered component stream
// that embeds JSON-looking fragments but is not valid JSON as a whole, so
// extraction is layered: literal pattern scans first, fragment parsing as a
// fallback, and an HTTP-status message as the last resort.
package interpret

import (
	"fmt"
	"html"
	"regexp"

	"github.com/valyala/fastjson"
)

var (
	codePattern     = regexp.MustCompile(`"redemptionCode"\s*:\s*"([0-9a-fA-F]{16,})"`)
	successPattern  = regexp.MustCompile(`"success"\s*:\s*(true|false)`)
	messagePattern  = regexp.MustCompile(`"message"\s*:\s*"(.*?)"`)
	fragmentPattern = regexp.MustCompile(`(?s)\{.*?\}`)
)

// Result is the outcome of interpreting one draw response body.
type Result struct {
	// Code is the redemption code, empty when none was found.
	Code string
	// Message is a human-readable note from the endpoint; never empty.
	Message string
	// SuccessSeen reports whether a "success" marker appeared in the stream.
	SuccessSeen bool
	// Fragment is the JSON object fragment that parsed, if any.
	Fragment *fastjson.Value
}

// Interpret scans raw for a redemption code and message. statusCode is only
// used to synthesize a message when the body yields none at all. Later
// occurrences of a field win over earlier ones: the stream appends the final
// state of the record at the end, so the last occurrence is the complete one.
func Interpret(raw []byte, statusCode int) Result {
	text := string(raw)

	var res Result

	if matches := codePattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		res.Code = matches[len(matches)-1][1]
	}

	res.SuccessSeen = successPattern.MatchString(text)

	if matches := messagePattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		res.Message = html.UnescapeString(matches[len(matches)-1][1])
	}

	res.Fragment = lastParsableFragment(text)

	if res.Fragment != nil {
		if res.Code == "" {
			res.Code = string(res.Fragment.GetStringBytes("redemptionCode"))
		}
		if res.Message == "" {
			res.Message = string(res.Fragment.GetStringBytes("message"))
		}
	}

	if res.Message == "" {
		res.Message = fmt.Sprintf("HTTP %d", statusCode)
	}

	return res
}

// lastParsableFragment pulls minimal {...} spans out of the stream and
// returns the last one that parses as a JSON object.
func lastParsableFragment(text string) *fastjson.Value {
	fragments := fragmentPattern.FindAllString(text, -1)

	for i := len(fragments) - 1; i >= 0; i-- {
		v, err := fastjson.Parse(fragments[i])

		if err != nil {
			continue
		}

		if v.Type() != fastjson.TypeObject {
			continue
		}

		return v
	}

	return nil
}

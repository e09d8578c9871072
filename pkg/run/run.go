// Package run drives one run: it budgets draw attempts against the daily
// quota, redeems won codes, and aggregates the per-attempt records into a
// summary for reporting and push.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"luckydraw-bot/pkg/draw"
	"luckydraw-bot/pkg/state"
	"luckydraw-bot/pkg/topup"
)

// Drawer performs one draw call.
type Drawer interface {
	DrawOnce(ctx context.Context) (*draw.Result, error)
}

// Redeemer exchanges a code for credit.
type Redeemer interface {
	Redeem(ctx context.Context, code string) (*topup.Result, error)
}

// Attempt is the record of one draw attempt. Immutable once appended to the
// run's sequence. The full code stays out of every serialized artifact;
// only the masked form is ever written.
type Attempt struct {
	DrawMessage   string `json:"draw_msg"`
	Code          string `json:"-"`
	CodeMask      string `json:"code_mask"`
	Redeemed      bool   `json:"topup_ok"`
	Amount        *int64 `json:"topup_amount"`
	RedeemMessage string `json:"topup_msg"`
}

// Summary aggregates one run. Created once after the loop, never mutated.
type Summary struct {
	Date        string    `json:"date"`
	Timezone    string    `json:"timezone"`
	TotalAmount int64     `json:"total_amount"`
	Items       []Attempt `json:"items"`
	TodayTried  int       `json:"today_tried"`
	TodayTarget int       `json:"today_target"`
}

// Notifiable reports whether the run earned a push: at least one attempt
// was made and at least one of them won a code or redeemed successfully.
func (s *Summary) Notifiable() bool {
	for _, it := range s.Items {
		if it.Redeemed || it.CodeMask != "" {
			return true
		}
	}

	return false
}

// MaskCode hides the middle of a redemption code for display. Codes too
// short to keep any context render as the bare placeholder.
func MaskCode(code string) string {
	if len(code) < 8 {
		return "****"
	}

	return code[:4] + "****" + code[len(code)-4:]
}

// Controller runs the attempt loop. Strictly sequential: a record always
// completes, success or failure, before the next draw is issued.
type Controller struct {
	Drawer   Drawer
	Redeemer Redeemer
	State    *state.Store

	// DailyMax caps attempts per calendar day across runs.
	DailyMax int
	// Delay is the courtesy pause after each network call.
	Delay time.Duration

	Log zerolog.Logger
}

// Run performs up to the remaining quota of attempts and returns the
// summary. Remote-call failures are folded into the attempt records; only a
// state-persistence failure aborts, since continuing would burn quota the
// counter cannot see.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	st := c.State.Load()
	tried := c.State.TriesToday(st)

	remaining := c.DailyMax - tried

	if remaining < 0 {
		remaining = 0
	}

	c.Log.Info().Int("tried", tried).Int("target", c.DailyMax).Int("planned", remaining).Msg("starting attempts")

	items := make([]Attempt, 0, remaining)

	for i := 0; i < remaining; i++ {
		drawLog := c.Log.With().Str("scope", "draw").Int("attempt", i+1).Logger()

		res, drawErr := c.Drawer.DrawOnce(ctx)

		// An attempt counts whether or not it produced a code, and the
		// counter is flushed before anything else happens.
		if err := c.State.BumpToday(st); err != nil {
			return nil, err
		}

		c.sleep(ctx)

		var rec Attempt

		switch {
		case drawErr != nil:
			rec.DrawMessage = drawErr.Error()
			rec.RedeemMessage = fmt.Sprintf("no redemption code (%s)", drawErr.Error())
			drawLog.Warn().Msg(drawErr.Error())

		case res.Code == "":
			rec.DrawMessage = res.Message
			rec.RedeemMessage = fmt.Sprintf("no redemption code (%s)", res.Message)
			drawLog.Info().Msg("no code this time")

		default:
			rec.DrawMessage = res.Message
			rec.Code = res.Code
			rec.CodeMask = MaskCode(res.Code)
			drawLog.Info().Str("code", rec.CodeMask).Msg("won a code")

			redeemLog := c.Log.With().Str("scope", "redeem").Int("attempt", i+1).Str("code", rec.CodeMask).Logger()

			tres, redeemErr := c.Redeemer.Redeem(ctx, res.Code)

			if redeemErr != nil {
				rec.RedeemMessage = redeemErr.Error()
				redeemLog.Warn().Msg(redeemErr.Error())
			} else {
				rec.Redeemed = tres.Success
				rec.RedeemMessage = tres.Message

				if tres.HasAmount {
					amount := tres.Amount
					rec.Amount = &amount
				}

				redeemLog.Info().Bool("ok", tres.Success).Msg(tres.Message)
			}
		}

		items = append(items, rec)

		c.sleep(ctx)
	}

	var total int64

	for _, it := range items {
		if it.Amount != nil {
			total += *it.Amount
		}
	}

	return &Summary{
		Date:        time.Now().In(c.State.Loc).Format("2006-01-02 15:04:05"),
		Timezone:    c.State.Loc.String(),
		TotalAmount: total,
		Items:       items,
		TodayTried:  c.State.TriesToday(st),
		TodayTarget: c.DailyMax,
	}, nil
}

func (c *Controller) sleep(ctx context.Context) {
	if c.Delay <= 0 {
		return
	}

	t := time.NewTimer(c.Delay)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

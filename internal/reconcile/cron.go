package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCron: 夜間バッチのスケジューラを起動する。
// cron式はUTC基準（既定 "30 13 * * *" = 22:30 JST、22:00の締め後）。
// 前回の実行が残っていたらその回はスキップする。
func StartCron(schedule string, svc *Service) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		report, err := svc.Run(ctx, "")
		if err != nil {
			log.Printf("[ERROR] 退室補完バッチが実行できず: %v", err)
			return
		}
		log.Printf("[INFO] 退室補完バッチ完了 run=%s day=%s processed=%d added=%d errors=%d",
			report.RunID, report.Day, report.Processed, report.LogoutsAdded, len(report.Errors))
		for _, e := range report.Errors {
			log.Printf("[WARN] 退室補完バッチ: %s", e)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[INFO] 退室補完バッチを登録 schedule=%q (UTC)", schedule)
	return c, nil
}

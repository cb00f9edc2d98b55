package notify

import (
	"context"

	"go.uber.org/zap"
)

// メール基盤は外部コラボレータ。ここでは構造化ログに書くだけの実装を置く。
// 本番はこのNotifierを実配送のものに差し替える。
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, recipient string, subject string, body string) error {
	n.logger.Info("notification",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)),
	)
	return nil
}

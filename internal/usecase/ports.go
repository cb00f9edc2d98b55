package usecase

import "context"

// 通知の送信。配送（メール/SMS）は外部コラボレータ。
// fire-and-forget：失敗はログに残すだけで伝播させない。
type Notifier interface {
	Send(ctx context.Context, recipient string, subject string, body string) error
}

// 決済プロセッサが発行したインテント
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// 決済プロセッサのクライアント。呼び出しはタイムアウト付きで行うこと。
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (PaymentIntent, error)

	//返金。プロセッサ側のステータス文字列を返す
	Refund(ctx context.Context, transactionID string) (string, error)
}

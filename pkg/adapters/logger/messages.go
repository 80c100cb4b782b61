package logger

import "github.com/ideamans/go-l10n"

func init() {
	// Japanese translations for worker log messages.
	l10n.Register("ja", l10n.LexiconMap{
		"Rendering frames...":                      "フレームを生成中...",
		"Rendering frames... (%d/%d)":              "フレームを生成中... (%d/%d)",
		"Skipping unreadable item %d/%d":           "読み取れない項目 %d/%d をスキップ",
		"Re-encoding & adding audio...":            "再エンコードと音声の追加中...",
		"Mixing audio and writing final output...": "音声をミックスして最終出力を書き込み中...",
		"Completed":                                "完了",
		"Stopped by request":                       "要求により停止しました",
		"Processing: %s":                           "処理中: %s",
		"Saved: %s":                                "保存しました: %s",
	})
}

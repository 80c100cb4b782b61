// Package main provides localization for the slidecast CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Build slideshow videos and convert portrait footage to landscape": "スライドショー動画の作成と縦型動画の横型変換",

		// Slideshow command
		"Build a slideshow video from a folder of images": "画像フォルダからスライドショー動画を作成",
		"Building slideshow from %s":                      "%s からスライドショーを作成中",

		// Convert command
		"Convert portrait videos to landscape": "縦型動画を横型に変換",
		"Converting %d input(s)":               "%d 件の入力を変換中",

		// Probe command
		"Show geometry and duration of a media file": "メディアファイルの解像度と長さを表示",

		// Errors
		"expected exactly one folder argument":          "フォルダを1つだけ指定してください",
		"expected a folder or one or more video files":  "フォルダまたは動画ファイルを指定してください",
		"expected exactly one file argument":            "ファイルを1つだけ指定してください",
		"stopped by request":                            "要求により停止しました",
	})
}

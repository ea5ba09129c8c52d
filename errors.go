/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Game operation failures. These are user-facing strings: they are never
// returned as HTTP errors, only echoed back inside {ok:false, error} acks.
var (
	errGameNotFound      = errors.New("Game not found")
	errGameInProgress    = errors.New("Game already in progress")
	errNotGameMaster     = errors.New("Only the game master can start the round")
	errNotEnoughPlayers  = errors.New("At least 2 players required")
	errMissingFields     = errors.New("Question and answer are required")
	errNoRoundInProgress = errors.New("No round in progress")
	errNotAPlayer        = errors.New("You are not in this game")
	errNoAttemptsLeft    = errors.New("No attempts left")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

func newPage(cfg *Config, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(cfg.prefix))
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"%s/\">%s</a></body></html>", cfg.prefix, body))

	return htmlBody.String()
}

// Package notify delivers finished videos and failure reports through
// the Telegram Bot API. When no bot token is configured all
// notifications become noops.
package notify

package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("208") // HN orange
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorLink      = lipgloss.Color("75")  // Blue
)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// DeadItem style for dead or deleted stories.
var DeadItem = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Strikethrough(true).
	Padding(0, 1)

// MetaItem style for score, author and age.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorMuted)

// RankStyle for the rank column of the story list.
var RankStyle = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Width(5).
	Align(lipgloss.Right)

// PlaceholderItem style for rows not yet backed by a record.
var PlaceholderItem = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true).
	Padding(0, 1)

// Header style for the screen title.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// CommentAuthor style for the comment header line.
var CommentAuthor = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// CommentCursor marks the selected comment.
var CommentCursor = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Bold(true)

// Comment body span styles.
var (
	SpanItalic = lipgloss.NewStyle().Italic(true)
	SpanCode   = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	SpanLink   = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// ErrorStyle for the error banner.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for empty-state text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 New reading", "new_reading"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 History", "history"),
			tgbotapi.NewInlineKeyboardButtonData("📈 Dashboard", "dashboard"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Profile", "profile"),
			tgbotapi.NewInlineKeyboardButtonData("⏰ Reminders", "reminders"),
		),
	)
}

// BackToMenu creates a single back button
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)
}

// Confirmation creates the low-confidence save/cancel keyboard
func Confirmation() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save anyway", "confirm_save"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_save"),
		),
	)
}

// ReadingActions creates per-reading edit/delete buttons for the history view
func ReadingActions(readingID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", fmt.Sprintf("edit_reading:%d", readingID)),
			tgbotapi.NewInlineKeyboardButtonData("📝 Notes", fmt.Sprintf("edit_notes:%d", readingID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Delete", fmt.Sprintf("delete_reading:%d", readingID)),
		),
	)
}

// DeleteConfirmation asks before removing a reading
func DeleteConfirmation(readingID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Yes, delete", fmt.Sprintf("confirm_delete:%d", readingID)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ No", "history"),
		),
	)
}

// Gender creates the profile gender selection keyboard
func Gender() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Male", "gender:male"),
			tgbotapi.NewInlineKeyboardButtonData("Female", "gender:female"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Other", "gender:other"),
			tgbotapi.NewInlineKeyboardButtonData("Prefer not to say", "gender:prefer_not_to_say"),
		),
	)
}

// ReminderMenu creates the reminder management keyboard
func ReminderMenu(reminders []database.Reminder) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Daily", "add_daily_reminder"),
			tgbotapi.NewInlineKeyboardButtonData("➕ Weekly", "add_weekly_reminder"),
		),
	)

	for _, r := range reminders {
		label := fmt.Sprintf("🗑️ %s %02d:%02d", r.Kind, r.Hour, r.Minute)
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("delete_reminder:%d", r.ID)),
			),
		)
	}

	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)

	return keyboard
}

// Weekday creates the weekly reminder day selection keyboard
func Weekday() tgbotapi.InlineKeyboardMarkup {
	days := []struct {
		label string
		value int
	}{
		{"Mon", 1}, {"Tue", 2}, {"Wed", 3}, {"Thu", 4},
		{"Fri", 5}, {"Sat", 6}, {"Sun", 0},
	}

	var row []tgbotapi.InlineKeyboardButton
	keyboard := tgbotapi.InlineKeyboardMarkup{}
	for _, d := range days {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(d.label, fmt.Sprintf("weekday:%d", d.value)))
		if len(row) == 4 {
			keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, row)
	}
	return keyboard
}

package handlers

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/security_helpers"
)

// ValidateInput runs struct validation and returns one fiber.Map per
// failed field, translated for humans. Empty result means valid input.
func ValidateInput(input interface{}) []fiber.Map {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, trans)

	err := validate.Struct(input)

	var errors []fiber.Map

	if err != nil {
		errs := err.(validator.ValidationErrors)

		for _, v := range errs {
			errors = append(errors, fiber.Map{
				"field":   v.Field(),
				"message": v.Translate(trans),
			})
		}
	}

	return errors
}

// FindThread resolves an encoded public thread id to its row.
func FindThread(db *sqlx.DB, publicID string) (model.Threads, bool) {
	thread := model.Threads{}

	threadID, objectType := security_helpers.Decode(publicID)

	if threadID == 0 || objectType != model.THREADS_TYPE {
		slog.Info("Thread security ID failure 💀")

		return thread, false
	}

	if err := db.Get(&thread, "SELECT * FROM threads WHERE id = ? LIMIT 1", threadID); err != nil {
		slog.Info("No thread found 💀")
		slog.Error(err.Error())

		return thread, false
	}

	return thread, true
}

// IsThreadParticipant is the database-side membership gate shared by
// the REST handlers and the websocket handshake.
func IsThreadParticipant(db *sqlx.DB, threadID uint64, userID uint64) bool {
	var count int64

	err := db.Get(&count,
		"SELECT count(*) FROM thread_participants WHERE thread_id = ? AND user_id = ? AND is_active = true",
		threadID, userID)

	if err != nil {
		slog.Warn("Does not have thread access 💀",
			slog.Uint64("thread_id", threadID),
			slog.Uint64("user_id", userID),
			slog.String("error", err.Error()))

		return false
	}

	return count > 0
}

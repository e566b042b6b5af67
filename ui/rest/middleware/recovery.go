package middleware

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	pkgError "github.com/sayedabdulkarim/message-scheduler/pkg/error"
	"github.com/sayedabdulkarim/message-scheduler/pkg/utils"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sirupsen/logrus"
)

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = 500
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				logrus.Errorf("Panic recovered in middleware: %v", err)

				if genericErr, ok := err.(pkgError.GenericError); ok {
					res.Status = genericErr.StatusCode()
					res.Code = genericErr.ErrCode()
					res.Message = genericErr.Error()
				} else if asErr, ok := err.(error); ok {
					res.Status, res.Code = classify(asErr)
					res.Message = asErr.Error()
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}

func classify(err error) (int, string) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		return fiber.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, common.ErrScheduleNotFound),
		errors.Is(err, common.ErrConnectionNotFound),
		errors.Is(err, common.ErrRecipientNotFound):
		return fiber.StatusNotFound, "DATA_NOT_FOUND"
	case errors.Is(err, common.ErrAlreadyConnected):
		return fiber.StatusConflict, "ALREADY_CONNECTED"
	case errors.Is(err, common.ErrUnsupportedPlatform):
		return fiber.StatusBadRequest, "UNSUPPORTED_PLATFORM"
	case errors.Is(err, common.ErrNotConnected):
		return fiber.StatusConflict, "NOT_CONNECTED"
	}
	return fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
}

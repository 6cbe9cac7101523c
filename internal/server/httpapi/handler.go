package httpapi

import (
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/timex"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func (s *HTTPServer) createDiary(c *fiber.Ctx) error {
	date, err := bindDate(c)
	if err != nil {
		return err
	}

	if _, err := s.diaries.CreateDiary(c.UserContext(), date, string(c.Body())); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) readDiary(c *fiber.Ctx) error {
	date, err := bindDate(c)
	if err != nil {
		return err
	}

	entries, err := s.diaries.ReadDiary(c.UserContext(), date)
	if err != nil {
		return err
	}
	return c.JSON(toEntryDTOs(entries))
}

func (s *HTTPServer) readDiaries(c *fiber.Ctx) error {
	start, end, err := bindRange(c)
	if err != nil {
		return err
	}

	entries, err := s.diaries.ReadDiaries(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(toEntryDTOs(entries))
}

func (s *HTTPServer) updateDiary(c *fiber.Ctx) error {
	date, err := bindDate(c)
	if err != nil {
		return err
	}

	if _, err := s.diaries.UpdateDiary(c.UserContext(), date, string(c.Body())); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) deleteDiary(c *fiber.Ctx) error {
	date, err := bindDate(c)
	if err != nil {
		return err
	}

	if _, err := s.diaries.DeleteDiary(c.UserContext(), date); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) archiveDiaries(c *fiber.Ctx) error {
	start, end, err := bindRange(c)
	if err != nil {
		return err
	}

	res, err := s.archive.ExportRange(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toArchiveDTO(res))
}

func (s *HTTPServer) fetchWeather(c *fiber.Ctx) error {
	snap, err := s.weather.SaveDailyWeather(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toWeatherDTO(snap))
}

func bindDate(c *fiber.Ctx) (time.Time, error) {
	var q dateQuery
	if err := bindQuery(c, &q); err != nil {
		return time.Time{}, err
	}
	return parseDate(q.Date)
}

func bindRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	var q rangeQuery
	if err := bindQuery(c, &q); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := parseDate(q.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(q.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := timex.ParseDate(s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return d, nil
}

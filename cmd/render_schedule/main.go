package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/config"
	"github.com/Freeeeeet/center_scheduler/internal/controller/common"
	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"github.com/Freeeeeet/center_scheduler/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Рисует расписание на день в PNG. Без -user используются тестовые данные.
func main() {
	var (
		userID = flag.Int64("user", 0, "user whose schedule to render; sample data when 0")
		date   = flag.String("date", time.Now().Format(time.DateOnly), "day, YYYY-MM-DD or DD/MM/YYYY")
		out    = flag.String("o", "schedule.png", "output file")
	)
	flag.Parse()

	day, err := request.ParseDay(*date)
	if err != nil {
		fmt.Printf("Ошибка: %v\n", err)
		os.Exit(1)
	}

	var imageData []byte
	if *userID > 0 {
		imageData, err = renderFromDB(*userID, day)
	} else {
		imageData, err = common.RenderDaySchedule(day, sampleSchedules())
	}
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", *out)
	fmt.Printf("📅 День: %s\n", day.Format("02.01.2006"))
}

func renderFromDB(userID int64, day time.Time) ([]byte, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	queries := service.NewQueryService(repository.NewPostgresStore(pool), common.RenderDaySchedule, zap.NewNop())
	return queries.ScheduleImage(ctx, userID, day)
}

func sampleSchedules() []model.TeacherSchedule {
	at := func(h, m int) model.TimeOfDay { return model.TimeOfDay(h*3600 + m*60) }
	slot := func(start, end model.TimeOfDay, names ...string) model.ScheduledSlot {
		s := model.ScheduledSlot{Time: start.Clock12(), Start: start, End: end}
		for i, n := range names {
			s.Attendees = append(s.Attendees, model.Attendee{ID: int64(i + 1), Name: n})
		}
		return s
	}

	return []model.TeacherSchedule{
		{
			TeacherID: 1,
			Teacher:   "Анна Смирнова",
			Slots: []model.ScheduledSlot{
				slot(at(9, 0), at(10, 0), "Иван Петров"),
				slot(at(11, 30), at(12, 15), "Мария Иванова", "Олег Сидоров"),
				slot(at(15, 0), at(16, 0), "Пётр Кузнецов"),
			},
		},
		{
			TeacherID: 2,
			Teacher:   "Дмитрий Орлов",
			Slots: []model.ScheduledSlot{
				slot(at(10, 0), at(10, 45), "Елена Волкова"),
				slot(at(14, 0), at(15, 30), "Сергей Морозов"),
			},
		},
		{
			TeacherID: 3,
			Teacher:   "Ольга Лебедева",
			Slots:     []model.ScheduledSlot{},
		},
	}
}

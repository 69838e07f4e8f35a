package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/db"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/rooms"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type seed struct {
	name, description, subject, kind string
	capacity, session, rest          int
}

var defaultRooms = []seed{
	{"Deep Focus Library", "Cameras off, chat off. Pure Pomodoro focus.", "General", rooms.TypeFocus, 20, 25, 5},
	{"Gentle Start", "Low-pressure room for easing into the day.", "General", rooms.TypeCasual, 15, 15, 5},
	{"Exam Crunch", "Longer blocks for exam prep. Everyone is cramming with you.", "Exams", rooms.TypeExamPrep, 12, 50, 10},
	{"Project Sprint", "Small groups shipping assignments together.", "Projects", rooms.TypeGroupProject, 6, 45, 10},
	{"Night Owls", "Late-night study company.", "General", rooms.TypeFocus, 10, 25, 5},
}

type nameList []string

func (l *nameList) String() string { return strings.Join(*l, ",") }
func (l *nameList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var only nameList
	var dryRun bool
	var migrate bool
	flag.Var(&only, "room", "seed only the named default room (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "print the rooms that would be created")
	flag.BoolVar(&migrate, "migrate", true, "run schema migrations first")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("init postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()
	if migrate {
		if err := pg.AutoMigrateAll(); err != nil {
			fmt.Printf("automigrate: %v\n", err)
			os.Exit(1)
		}
	}

	roomRepo := repos.NewRoomRepo(pg.DB(), log)
	dbc := dbctx.Context{Ctx: context.Background()}

	wanted := map[string]bool{}
	for _, n := range only {
		wanted[strings.ToLower(n)] = true
	}

	created, skipped := 0, 0
	for _, s := range defaultRooms {
		if len(wanted) > 0 && !wanted[strings.ToLower(s.name)] {
			continue
		}
		existing, err := roomRepo.GetByName(dbc, s.name)
		if err != nil {
			fmt.Printf("lookup %q: %v\n", s.name, err)
			os.Exit(1)
		}
		if existing != nil {
			skipped++
			continue
		}
		if dryRun {
			fmt.Printf("would create %q (%s, %d seats)\n", s.name, s.kind, s.capacity)
			created++
			continue
		}
		desc, subject := s.description, s.subject
		room := &types.StudyRoom{
			Name:            s.name,
			Description:     &desc,
			Subject:         &subject,
			RoomType:        s.kind,
			MaxParticipants: s.capacity,
			SessionDuration: s.session,
			BreakDuration:   s.rest,
			AutoStartBreak:  true,
			IsActive:        true,
		}
		if err := roomRepo.Create(dbc, room); err != nil {
			fmt.Printf("create %q: %v\n", s.name, err)
			os.Exit(1)
		}
		created++
	}

	fmt.Printf("done. created=%d skipped=%d dry_run=%v\n", created, skipped, dryRun)
}

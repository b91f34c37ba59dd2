package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"boxstudio/internal/bookings"
	"boxstudio/internal/events"
	"boxstudio/internal/members"
	"boxstudio/internal/payments"
	"boxstudio/internal/shared/database"
	"boxstudio/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newSeedCommand(a *app) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the database and load demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeFn, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			seeder := NewSeeder(db, cmd.OutOrStdout())
			if !keep {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleaning database...")
				if err := seeder.CleanDatabase(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seeding database...")
			if err := seeder.SeedAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seeding completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep existing rows instead of truncating first")
	return cmd
}

// Seeder loads a small studio: class types, groups, members, a week of classes
// and the bookings, payments and messages around them. Writes go through the
// services so attendance and visits stay consistent.
type Seeder struct {
	db  *gorm.DB
	out io.Writer

	members  members.Repository
	events   events.Repository
	bookings bookings.Service
	payments payments.Service
	whatsapp whatsapp.Service
}

func NewSeeder(db *gorm.DB, out io.Writer) *Seeder {
	return &Seeder{
		db:       db,
		out:      out,
		members:  members.NewRepository(db),
		events:   events.NewRepository(db),
		bookings: bookings.NewService(bookings.NewRepository(db), nil, nil),
		payments: payments.NewService(payments.NewRepository(db), nil, nil),
		whatsapp: whatsapp.NewService(whatsapp.NewRepository(db), nil, nil, whatsapp.Options{}),
	}
}

// CleanDatabase truncates every studio table
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range database.TableNames() {
			fmt.Fprintf(s.out, "  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all demo data
func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	memberIDs, err := s.seedMembers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed members: %w", err)
	}

	eventIDs, err := s.seedEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.seedBookings(ctx, eventIDs, memberIDs); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	if err := s.seedPayments(ctx, memberIDs); err != nil {
		return fmt.Errorf("failed to seed payments: %w", err)
	}

	if err := s.seedMessages(ctx); err != nil {
		return fmt.Errorf("failed to seed messages: %w", err)
	}
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	classTypes := []events.ClassType{
		{ID: "boxing-basics", Name: "Boxing Basics", Level: "beginner"},
		{ID: "bag-work", Name: "Bag Work", Level: "intermediate"},
		{ID: "sparring", Name: "Sparring", Level: "advanced"},
	}
	for i := range classTypes {
		if err := s.events.UpsertClassType(ctx, &classTypes[i]); err != nil {
			return err
		}
	}

	groups := []members.Group{
		{ID: "youth", Name: "Youth Squad"},
		{ID: "fight-team", Name: "Fight Team", RequiresApproval: true},
	}
	for i := range groups {
		if err := s.members.UpsertGroup(ctx, &groups[i]); err != nil {
			return err
		}
	}

	return s.members.UpsertCampaign(ctx, &members.Campaign{ID: "spring-open-day", Name: "Spring Open Day"})
}

func (s *Seeder) seedMembers(ctx context.Context) ([]uuid.UUID, error) {
	type memberSeed struct {
		name   string
		gender string
		born   string
		groups []string
	}
	seeds := []memberSeed{
		{"Ana Ruiz", "female", "1994-05-12", nil},
		{"Ben Okafor", "male", "1988-11-02", []string{"fight-team"}},
		{"Chloe Martin", "female", "2009-02-20", []string{"youth"}},
		{"Dev Patel", "male", "1979-07-30", nil},
		{"Eli Novak", "", "", nil},
		{"Farah Haddad", "Female", "2001-09-09", []string{"fight-team"}},
	}

	campaign := "spring-open-day"
	ids := make([]uuid.UUID, 0, len(seeds))
	for _, seed := range seeds {
		member := &members.Member{FullName: seed.name, CampaignID: &campaign}
		if seed.gender != "" {
			gender := seed.gender
			member.Gender = &gender
		}
		if seed.born != "" {
			dob, err := time.Parse("2006-01-02", seed.born)
			if err != nil {
				return nil, err
			}
			member.DOB = &dob
		}
		if err := s.members.Create(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to create member %s: %w", seed.name, err)
		}
		if len(seed.groups) > 0 {
			if err := s.members.AddToGroups(ctx, member, seed.groups...); err != nil {
				return nil, err
			}
		}
		ids = append(ids, member.ID)
		fmt.Fprintf(s.out, "  Created member: %s\n", seed.name)
	}
	return ids, nil
}

func (s *Seeder) seedEvents(ctx context.Context) ([]uuid.UUID, error) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	capacity := func(n int) *int { return &n }

	schedule := []events.Event{
		{Name: "Morning Basics", ClassTypeID: "boxing-basics", StartsAt: day.Add(7 * time.Hour), Capacity: capacity(12)},
		{Name: "Bag Work", ClassTypeID: "bag-work", StartsAt: day.Add(18 * time.Hour), Capacity: capacity(3)},
		{Name: "Friday Sparring", ClassTypeID: "sparring", StartsAt: day.Add(4*24*time.Hour + 19*time.Hour), Capacity: capacity(2), RequiresApproval: true},
		{Name: "Open Gym", ClassTypeID: "bag-work", StartsAt: day.Add(2*24*time.Hour + 12*time.Hour)},
	}

	ids := make([]uuid.UUID, 0, len(schedule))
	for i := range schedule {
		event := &schedule[i]
		event.EndsAt = event.StartsAt.Add(time.Hour)
		if err := s.events.Create(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}
		ids = append(ids, event.ID)
		fmt.Fprintf(s.out, "  Created event: %s\n", event.Name)
	}
	return ids, nil
}

func (s *Seeder) seedBookings(ctx context.Context, eventIDs, memberIDs []uuid.UUID) error {
	var pending []*bookings.Booking
	for i, eventID := range eventIDs {
		for j, memberID := range memberIDs {
			if (i+j)%2 == 1 {
				continue
			}
			booking, err := s.bookings.Create(ctx, eventID, memberID)
			if err != nil {
				// Full classes and approval groups are part of the demo
				fmt.Fprintf(s.out, "  Skipped booking: %v\n", err)
				continue
			}
			if booking.Status == bookings.StatusPending {
				pending = append(pending, booking)
			}
		}
	}

	for i, booking := range pending {
		if i == 0 {
			if _, err := s.bookings.Cancel(ctx, booking.ID); err != nil {
				return err
			}
			continue
		}
		if _, err := s.bookings.Approve(ctx, booking.ID, "head-coach"); err != nil {
			fmt.Fprintf(s.out, "  Skipped approval: %v\n", err)
		}
	}
	return nil
}

func (s *Seeder) seedPayments(ctx context.Context, memberIDs []uuid.UUID) error {
	amounts := []int64{4500, 12000, 2500, 9900}
	for i, amount := range amounts {
		amount := amount
		payment, err := s.payments.CreatePayment(ctx, payments.CreatePaymentRequest{
			MemberID:    memberIDs[i%len(memberIDs)].String(),
			AmountCents: &amount,
			Description: "Class pack",
		})
		if err != nil {
			return err
		}
		if i == 1 {
			if _, err := s.payments.CreateRefund(ctx, payment.ID, 3000, "missed_classes"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedMessages(ctx context.Context) error {
	msg, err := s.whatsapp.SendGroup(ctx, whatsapp.SendGroupRequest{GroupID: "youth", Message: "Saturday class moves to 10am"})
	if err != nil {
		return err
	}
	for _, status := range []string{"sent", "seen"} {
		if _, err := s.whatsapp.RecordStatus(ctx, whatsapp.CanonicalPayload{MessageID: msg.ID, Status: status}); err != nil {
			return err
		}
	}

	msg, err = s.whatsapp.SendGroup(ctx, whatsapp.SendGroupRequest{GroupID: "fight-team", Message: "Weigh-in Friday 6pm"})
	if err != nil {
		return err
	}
	errorCode := "131026"
	_, err = s.whatsapp.RecordStatus(ctx, whatsapp.ProviderPayload{MessageID: msg.ID, State: "failed", ErrorCode: &errorCode})
	return err
}

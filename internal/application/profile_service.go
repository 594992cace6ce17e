package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	repo "github.com/oksasatya/user-directory/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// ProfileView is the read model served by the API: the stored user plus
// derived age and a summary of the follow graph. It is recomputed from the
// store on every read and never persisted.
type ProfileView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	DateOfBirth    string    `json:"date_of_birth"`
	ProfileImage   *string   `json:"profile_image"`
	CreatedAt      time.Time `json:"created_at"`
	Age            int       `json:"age"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	Following      []string  `json:"following"`
	Followers      []string  `json:"followers"`
}

// Service composes ProfileViews out of the user store. It is stateless; the
// derived fields always reflect current store state.
type Service struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewService(r repo.UserRepository, logger *logrus.Logger) *Service {
	return &Service{Repo: r, Logger: logger}
}

// AgeOn returns the whole years elapsed from a YYYY-MM-DD birth date to now:
// current year minus birth year, minus one when the birthday has not been
// reached yet this year.
func AgeOn(dateOfBirth string, now time.Time) (int, error) {
	birth, err := time.Parse(dateLayout, dateOfBirth)
	if err != nil {
		return 0, err
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, nil
}

func (s *Service) age(dateOfBirth string) int {
	age, err := AgeOn(dateOfBirth, time.Now())
	if err != nil {
		s.Logger.WithError(err).WithField("date_of_birth", dateOfBirth).Warn("unparseable date of birth")
		return 0
	}
	return age
}

// ProfileView derives the view for a single user. The four follow-graph
// queries are independent and issued concurrently.
func (s *Service) ProfileView(ctx context.Context, u *entity.User) (*ProfileView, error) {
	view := &ProfileView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		DateOfBirth:  u.DateOfBirth,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		Age:          s.age(u.DateOfBirth),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Repo.CountFollowers(ctx, u.ID)
		view.FollowersCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.Repo.CountFollowing(ctx, u.ID)
		view.FollowingCount = n
		return err
	})
	g.Go(func() error {
		ids, err := s.Repo.FollowerIDs(ctx, u.ID)
		view.Followers = ids
		return err
	})
	g.Go(func() error {
		ids, err := s.Repo.FollowingIDs(ctx, u.ID)
		view.Following = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Empty lists serialize as [] rather than null.
	if view.Followers == nil {
		view.Followers = []string{}
	}
	if view.Following == nil {
		view.Following = []string{}
	}
	return view, nil
}

// ProfileViews derives views for a batch of users, preserving order. Each
// user is composed independently; there is no cross-user snapshot.
func (s *Service) ProfileViews(ctx context.Context, users []*entity.User) ([]*ProfileView, error) {
	views := make([]*ProfileView, len(users))
	g, ctx := errgroup.WithContext(ctx)
	for i, u := range users {
		g.Go(func() error {
			view, err := s.ProfileView(ctx, u)
			views[i] = view
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

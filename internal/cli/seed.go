package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/search"
	"github.com/inkpost/inkpost-server/internal/service"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// Fixture is the YAML document read by the seed command.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

// FixtureUser is an account and the posts it owns. Existing accounts are
// matched by email and reused.
type FixtureUser struct {
	Email    string        `yaml:"email"`
	Name     string        `yaml:"name"`
	Password string        `yaml:"password"`
	Staff    bool          `yaml:"staff"`
	Posts    []FixturePost `yaml:"posts"`
}

// FixturePost is a post with its tags by name and sections by value.
type FixturePost struct {
	Title    string           `yaml:"title"`
	Detail   *string          `yaml:"detail"`
	Featured *bool            `yaml:"featured"`
	Visible  *bool            `yaml:"visible"`
	Tags     []string         `yaml:"tags"`
	Sections []FixtureSection `yaml:"sections"`
}

// FixtureSection is a section header and optional description.
type FixtureSection struct {
	Header      string  `yaml:"header"`
	Description *string `yaml:"description"`
}

// SeedResult counts what a seed run did.
type SeedResult struct {
	UsersCreated int
	UsersReused  int
	Posts        int
}

// LoadFixture parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	//#nosec G304 -- the fixture path is an explicit command argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &fx, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load users and posts from a YAML fixture",
		Long: `Load users and posts from a YAML fixture.

Posts go through the same reconciliation as the API, so tags and sections
are shared per owner exactly as they would be over HTTP. Run it while the
server is stopped: the search index, when enabled, is updated in place.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSeed(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	fx, err := LoadFixture(path)
	if err != nil {
		return err
	}

	cfg, st, log, err := openStore(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var index *search.SearchIndex
	if cfg.Search.Enabled {
		idx, _, err := search.NewSearchIndex(search.Options{DataPath: cfg.Data.BasePath, Logger: log.Logger})
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}
		defer idx.Close()
		index = idx
	}

	result, err := seed(cmd.Context(), st, index, fx, log)
	if err != nil {
		return describeError(err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users (%d existing), %d posts\n",
		result.UsersCreated, result.UsersReused, result.Posts)
	return err
}

// seed applies fx to st, indexing posts into index when it is not nil.
func seed(ctx context.Context, st store.Store, index *search.SearchIndex, fx *Fixture, log *logger.Logger) (*SeedResult, error) {
	v := validation.New()
	authService := service.NewAuthService(st, nil, v, log.Logger)
	postService := service.NewPostService(st, service.NewSearchService(st, index, log.Logger), nil, v, log.Logger)

	result := &SeedResult{}
	for _, fu := range fx.Users {
		user, err := st.GetUserByEmail(ctx, domain.NormalizeEmail(fu.Email))
		switch {
		case err == nil:
			result.UsersReused++
		case errors.Is(err, store.ErrNotFound):
			user, err = authService.CreateUser(ctx, service.RegisterRequest{
				Email:    fu.Email,
				Password: fu.Password,
				Name:     fu.Name,
			}, fu.Staff)
			if err != nil {
				return nil, fmt.Errorf("user %s: %w", fu.Email, err)
			}
			result.UsersCreated++
		default:
			return nil, fmt.Errorf("look up %s: %w", fu.Email, err)
		}

		for _, fp := range fu.Posts {
			if _, err := postService.Create(ctx, user.ID, fp.request()); err != nil {
				return nil, fmt.Errorf("post %q of %s: %w", fp.Title, fu.Email, err)
			}
			result.Posts++
		}
	}

	return result, nil
}

func (fp FixturePost) request() service.CreatePostRequest {
	req := service.CreatePostRequest{
		Title:    fp.Title,
		Detail:   fp.Detail,
		Featured: fp.Featured,
		Visible:  fp.Visible,
	}
	if len(fp.Tags) > 0 {
		tags := make([]service.TagInput, len(fp.Tags))
		for i, name := range fp.Tags {
			tags[i] = service.TagInput{Name: name}
		}
		req.Tags = &tags
	}
	if len(fp.Sections) > 0 {
		sections := make([]service.SectionInput, len(fp.Sections))
		for i, s := range fp.Sections {
			sections[i] = service.SectionInput{Header: s.Header, Description: s.Description}
		}
		req.Sections = &sections
	}
	return req
}

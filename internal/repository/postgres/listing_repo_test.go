package postgres_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/query"
	"github.com/jcall/wanderstay/internal/repository/postgres"
	"github.com/jcall/wanderstay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchParams(t *testing.T, raw string) query.Params {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return query.Parse(values)
}

func titles(listings []*domain.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.Title
	}
	return out
}

func TestListingRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewListingRepository(db)
	ctx := context.Background()

	testutil.NewListingBuilder().
		WithTitle("hillside retreat").
		WithDescription("wide ocean views from every room").
		WithPrice(150).
		WithLocation("santorini").
		WithCountry("greece").
		Build(t, db)
	testutil.NewListingBuilder().
		WithTitle("downtown flat").
		WithDescription("compact city apartment").
		WithPrice(99).
		WithLocation("berlin").
		WithCountry("germany").
		Build(t, db)
	testutil.NewListingBuilder().
		WithTitle("alpine cabin").
		WithDescription("mountain valley hideout").
		WithPrice(201).
		WithLocation("innsbruck").
		WithCountry("austria").
		Build(t, db)

	tests := []struct {
		name   string
		params string
		want   []string
	}{
		{
			// "ocean" appears only in the description; the beach keyword
			// set still matches.
			name:   "category beach matches ocean description",
			params: "category=beach",
			want:   []string{"hillside retreat"},
		},
		{
			name:   "price range is inclusive on both ends",
			params: "minPrice=100&maxPrice=200",
			want:   []string{"hillside retreat"},
		},
		{
			name:   "min price alone",
			params: "minPrice=150",
			want:   []string{"alpine cabin", "hillside retreat"},
		},
		{
			name:   "location substring is case-insensitive",
			params: "location=SANTO",
			want:   []string{"hillside retreat"},
		},
		{
			name:   "country filter",
			params: "country=germany",
			want:   []string{"downtown flat"},
		},
		{
			name:   "free text search spans title description location country",
			params: "search=berlin",
			want:   []string{"downtown flat"},
		},
		{
			// Union, not intersection: a search term matching nothing does
			// not suppress the category matches.
			name:   "search and category union",
			params: "search=zzzzz&category=mountains",
			want:   []string{"alpine cabin"},
		},
		{
			name:   "category and price are conjunctive",
			params: "category=cities&maxPrice=50",
			want:   []string{},
		},
		{
			name:   "no filters returns everything title-ascending",
			params: "",
			want:   []string{"alpine cabin", "downtown flat", "hillside retreat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, query.Build(searchParams(t, tt.params)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestListingRepository_SearchSort(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewListingRepository(db)
	ctx := context.Background()

	testutil.NewListingBuilder().WithTitle("b").WithPrice(300).Build(t, db)
	testutil.NewListingBuilder().WithTitle("c").WithPrice(100).Build(t, db)
	testutil.NewListingBuilder().WithTitle("a").WithPrice(200).Build(t, db)

	tests := []struct {
		name   string
		sortBy string
		want   []string
	}{
		{"priceLow ascends", "priceLow", []string{"c", "a", "b"}},
		{"priceHigh descends", "priceHigh", []string{"b", "a", "c"}},
		{"default is title ascending", "", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, query.Build(query.Params{SortBy: tt.sortBy}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestListingRepository_GetByIDEagerLoads(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	ctx := context.Background()

	listing := testutil.NewListingBuilder().Build(t, db)
	author, _ := testutil.NewUserBuilder().
		WithUsername("reviewer1").
		WithEmail("reviewer1@example.com").
		Build(t, db)

	review := &domain.Review{
		ID:        uuid.New(),
		ListingID: listing.ID,
		AuthorID:  author.ID,
		Comment:   "lovely stay",
		Rating:    5,
	}
	require.NoError(t, repos.Review.Create(ctx, review))

	got, err := repos.Listing.GetByID(ctx, listing.ID)
	require.NoError(t, err)

	require.NotNil(t, got.Owner)
	require.Len(t, got.Reviews, 1)
	require.NotNil(t, got.Reviews[0].Author)
	assert.Equal(t, "reviewer1", got.Reviews[0].Author.Username)
}

func TestListingRepository_Suggest(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewListingRepository(db)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		testutil.NewListingBuilder().
			WithTitle("seaside villa " + string(rune('a'+i))).
			WithLocation("seatown").
			Build(t, db)
	}

	suggestions, err := repo.Suggest(ctx, query.FieldTitle, "seaside", 10)
	require.NoError(t, err)
	assert.Len(t, suggestions, 10)

	locations, err := repo.Suggest(ctx, query.FieldLocation, "seat", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"seatown"}, locations)
}

// Package firestore guarda usuários e o cache de geocodificação no Firestore.
package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/auth"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/geo"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	UsersCollection    = "users"
	GeocodeCollection  = "geocodeCache"
	maxDocumentIDBytes = 1500
)

// NewClient abre o cliente do Firestore no banco informado.
func NewClient(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar cliente Firestore para o banco '%s': %w", databaseID, err)
	}
	return client, nil
}

// Users implementa auth.UserStore.
type Users struct {
	db *firestore.Client
}

func NewUsers(db *firestore.Client) *Users {
	return &Users{db: db}
}

func (u *Users) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := u.db.Collection(UsersCollection).Where("username", "==", username).Limit(1).Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return nil, auth.ErrUsuarioNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar usuário: %w", err)
	}

	var user auth.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("erro ao ler dados do usuário: %w", err)
	}
	return &user, nil
}

// GeoCache implementa geo.Cache com um documento por chave.
type GeoCache struct {
	db *firestore.Client
}

func NewGeoCache(db *firestore.Client) *GeoCache {
	return &GeoCache{db: db}
}

type geocodeDoc struct {
	Key       string    `firestore:"key"`
	Lat       float64   `firestore:"lat"`
	Lon       float64   `firestore:"lon"`
	Missing   bool      `firestore:"missing"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (g *GeoCache) Get(ctx context.Context, key string) (geo.Coords, bool, error) {
	snap, err := g.db.Collection(GeocodeCollection).Doc(DocumentID(key)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return geo.Coords{}, false, nil
	}
	if err != nil {
		return geo.Coords{}, false, err
	}

	var d geocodeDoc
	if err := snap.DataTo(&d); err != nil {
		return geo.Coords{}, false, err
	}
	return geo.Coords{Lat: d.Lat, Lon: d.Lon, Missing: d.Missing, CachedAt: d.UpdatedAt}, true, nil
}

// Set grava a entrada; consultas sem resultado ficam com missing=true.
func (g *GeoCache) Set(ctx context.Context, key string, c geo.Coords) error {
	updatedAt := c.CachedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := g.db.Collection(GeocodeCollection).Doc(DocumentID(key)).Set(ctx, geocodeDoc{
		Key:       key,
		Lat:       c.Lat,
		Lon:       c.Lon,
		Missing:   c.Missing,
		UpdatedAt: updatedAt.UTC(),
	})
	return err
}

var idReplacer = strings.NewReplacer("/", "_", "\\", "_")

// DocumentID transforma a chave do cache num ID de documento válido:
// sem "/", diferente de "." e "..", e sem o padrão reservado __.*__.
func DocumentID(key string) string {
	id := idReplacer.Replace(key)
	if strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__") {
		id = "k" + id
	}
	if id == "" || id == "." || id == ".." {
		id = "k" + id
	}
	if len(id) > maxDocumentIDBytes {
		id = id[:maxDocumentIDBytes]
	}
	return id
}

package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/vector"
	"github.com/thinkbooklabs/thinkbook/pkg/vector/chroma"
	"github.com/thinkbooklabs/thinkbook/pkg/vector/pgvector"
	"github.com/thinkbooklabs/thinkbook/pkg/vector/qdrant"
	"github.com/thinkbooklabs/thinkbook/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// TargetURL is the server URL for chroma, the gRPC host for qdrant, or
	// the connection string for pgvector.
	TargetURL string

	// DBPath is the database file path for sqlitevec.
	DBPath string

	// Collection names the chroma collection, qdrant collection, or
	// pgvector table, depending on the provider.
	Collection string

	// Dimensions is the embedding vector dimensionality.
	Dimensions uint

	Logger *zap.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.VectorDriver, error) {
	switch o.ProviderType {
	case "sqlitevec":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.DBPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewChromaDriver(chroma.Config{
			URL:            o.TargetURL,
			CollectionName: o.Collection,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewQdrantDriver(qdrant.Config{
			Host:           o.TargetURL,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case "pgvector":
		return pgvector.NewPGVectorDriver(ctx, pgvector.Config{
			ConnString: o.TargetURL,
			TableName:  o.Collection,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

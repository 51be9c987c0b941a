package main

import (
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/devplatform/social-backend/engagement"
	"github.com/devplatform/social-backend/feed"
	"github.com/devplatform/social-backend/identity"
	"github.com/devplatform/social-backend/media"
	"github.com/devplatform/social-backend/propagator"
	"github.com/devplatform/social-backend/server"
	"github.com/devplatform/social-backend/socialgraph"
	"github.com/devplatform/social-backend/store/postgres"
	"github.com/devplatform/social-backend/utils"
	"github.com/devplatform/social-backend/utils/dotenv"
	Logger "github.com/devplatform/social-backend/utils/log"
)

const identityCacheTTL = 5 * time.Minute

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		panic("failed to connect to database: " + err.Error())
	}
	if err := utils.DatabaseSetupAndMigration(db); err != nil {
		panic("failed to migrate database: " + err.Error())
	}

	entityStore := postgres.New(db)

	blobs, err := media.NewS3BlobStore(envOr("S3_REGION", "us-west-1"), os.Getenv("S3_BUCKET"))
	if err != nil {
		panic("failed to create blob store: " + err.Error())
	}
	dedup := media.NewDedupStore(entityStore, blobs, envOr("S3_FOLDER", "uploads"))

	var identities identity.Provider = identity.NewStoreProvider(entityStore)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		identities = identity.NewRedisCachedProvider(identities, rdb, identityCacheTTL)
	}

	graph := socialgraph.New(entityStore, entityStore)
	composer := feed.NewComposer(entityStore, graph, identities)
	ledger := engagement.New(entityStore, entityStore, entityStore, entityStore)
	prop := propagator.New(entityStore)

	router := server.NewRouter(server.Deps{
		Store:      entityStore,
		Media:      dedup,
		Graph:      graph,
		Feed:       composer,
		Ledger:     ledger,
		Propagator: prop,
		Identities: identities,
	})

	Logger.LogV2.Info("===== Social Backend Server Started =====")
	router.Run(":" + envOr("PORT", "8080"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

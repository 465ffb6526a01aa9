package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/tags"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Tags(db dbx.DBTX) tags.Repository
	Ingredients(db dbx.DBTX) ingredients.Repository
	Recipes(db dbx.DBTX) recipes.Repository
}

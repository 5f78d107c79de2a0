package pages

import (
	"context"
	"fmt"
	"time"

	"hkm-site/internal/domain/data"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

const queryTimeout = 5 * time.Second

type SiteGraphNeo4jRepo struct {
	driver   neo4j.DriverWithContext
	logger   *zap.SugaredLogger
	database string
}

func NewNeo4jRepo(logger *zap.SugaredLogger, driver neo4j.DriverWithContext, database string) *SiteGraphNeo4jRepo {
	return &SiteGraphNeo4jRepo{
		driver:   driver,
		logger:   logger,
		database: database,
	}
}

func (repo *SiteGraphNeo4jRepo) EnsureConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return repo.driver.VerifyConnectivity(ctx)
}

func (repo *SiteGraphNeo4jRepo) SavePage(ctx context.Context, page *data.SitePage) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	queryRes, errQuery := neo4j.ExecuteQuery(ctx, repo.driver, `
		MERGE (p:Page {url: $url})
		ON CREATE SET p.foundAt = $foundAt
		SET p.pageID = $pageID, p.title = $title, p.status = $status, p.links = $links, p.lastRenderedAt = $lastRenderedAt
		WITH p
		OPTIONAL MATCH (p)-[old:LINKS_TO]->()
		DELETE old
		WITH DISTINCT p
		UNWIND $links AS linkUrl
		MERGE (l:Page {url: linkUrl})
		ON CREATE SET l.foundAt = $foundAt
		MERGE (p)-[:LINKS_TO]->(l)
	`,
		page.ToParams(),
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(repo.database),
	)
	if errQuery != nil {
		repo.logger.Errorf("failed to save page %s: %v", page.URL, errQuery)
		return fmt.Errorf("failed to save page %s: %w", page.URL, errQuery)
	}

	repo.logger.Debugw("page saved", "url", page.URL, "links", len(page.Links), "took", queryRes.Summary.ResultAvailableAfter())

	return nil
}

// ListPages returns the pages that were rendered successfully, ordered by URL.
// Pages only known as link targets are left out.
func (repo *SiteGraphNeo4jRepo) ListPages(ctx context.Context) ([]data.SitePage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := neo4j.ExecuteQuery(ctx, repo.driver, `
		MATCH (p:Page)
		WHERE p.status = 200
		RETURN p.url AS url, coalesce(p.pageID, '') AS pageID, coalesce(p.title, '') AS title, coalesce(p.lastRenderedAt, '') AS lastRenderedAt
		ORDER BY p.url
	`,
		nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(repo.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	out := make([]data.SitePage, 0, len(res.Records))
	for _, record := range res.Records {
		url, _, err := neo4j.GetRecordValue[string](record, "url")
		if err != nil {
			repo.logger.Warnw("skipping page record", "err", err)
			continue
		}

		page := data.SitePage{URL: url, Status: 200}
		page.PageID, _, _ = neo4j.GetRecordValue[string](record, "pageID")
		page.Title, _, _ = neo4j.GetRecordValue[string](record, "title")

		if rendered, _, err := neo4j.GetRecordValue[string](record, "lastRenderedAt"); err == nil && rendered != "" {
			page.LastRenderedAt, _ = time.Parse(time.RFC3339, rendered)
		}

		out = append(out, page)
	}

	return out, nil
}

func (repo *SiteGraphNeo4jRepo) Close(ctx context.Context) error {
	return repo.driver.Close(ctx)
}

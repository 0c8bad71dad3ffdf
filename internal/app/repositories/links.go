package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/brightnest/daycare/internal/db"
)

// link describes a many-to-many join table
type link struct {
	table string
	owner string
	ref   string
}

var (
	newsletterCategories   = link{table: "newsletter_categories", owner: "newsletter_id", ref: "category_id"}
	announcementCategories = link{table: "announcement_categories", owner: "announcement_id", ref: "category_id"}
	eventCategories        = link{table: "event_categories", owner: "event_id", ref: "category_id"}
	eventNewsletters       = link{table: "event_newsletters", owner: "event_id", ref: "newsletter_id"}
	subscriptionGroups     = link{table: "subscription_group_members", owner: "subscription_id", ref: "group_id"}
)

// replace swaps every row of ownerID for refs
func (l link) replace(ctx context.Context, q db.DBTX, ownerID int64, refs []int64) error {
	sql, args, err := psql.Delete(l.table).Where(squirrel.Eq{l.owner: ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s delete: %w", l.table, err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error clearing %s: %w", l.table, err)
	}
	return l.insert(ctx, q, ownerID, refs)
}

func (l link) insert(ctx context.Context, q db.DBTX, ownerID int64, refs []int64) error {
	if len(refs) == 0 {
		return nil
	}
	builder := psql.Insert(l.table).Columns(l.owner, l.ref)
	for _, ref := range refs {
		builder = builder.Values(ownerID, ref)
	}
	sql, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", l.table, err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error inserting %s: %w", l.table, err)
	}
	return nil
}

// load returns the referenced ids grouped by owner
func (l link) load(ctx context.Context, q db.DBTX, ownerIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(l.owner, l.ref).
		From(l.table).
		Where(squirrel.Eq{l.owner: ownerIDs}).
		OrderBy(l.owner, l.ref).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s select: %w", l.table, err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", l.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner, ref int64
		if err := rows.Scan(&owner, &ref); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", l.table, err)
		}
		out[owner] = append(out[owner], ref)
	}
	return out, rows.Err()
}

// missingIDs returns the ids absent from table
func missingIDs(ctx context.Context, q db.DBTX, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sql, args, err := psql.Select("id").From(table).Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s lookup: %w", table, err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error looking up %s: %w", table, err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

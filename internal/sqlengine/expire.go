package sqlengine

import "context"

// ExpireScan deletes every row past its expire column, one DELETE per map
// that declares one, each in its own driver transaction, mirroring
// sql_dict_expire_map/sql_dict_expire_scan running over dict->maps. It
// reports whether any map had an expire column at all, so a caller can
// distinguish "nothing to expire" from "this dict has no TTL maps".
func (b *Backend) ExpireScan(ctx context.Context) (bool, error) {
	if err := b.checkAttached(); err != nil {
		return false, err
	}

	now := currentNow()
	hadExpireMap := false

	for i := range b.maps {
		m := &b.maps[i]
		if !m.HasExpire() {
			continue
		}
		hadExpireMap = true

		query, args := BuildExpireDelete(m.Table, m.ExpireField, now)

		tx, err := b.driver.Begin(ctx)
		if err != nil {
			return hadExpireMap, err
		}
		if _, err := tx.Exec(ctx, query, args); err != nil {
			tx.Rollback()
			return hadExpireMap, err
		}
		if err := tx.Commit(); err != nil {
			return hadExpireMap, err
		}
	}

	return hadExpireMap, nil
}

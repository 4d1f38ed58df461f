// Package sqlinline holds every SQL statement the repositories execute. Each
// constant carries an audit marker enforced by internal/tools/sqllint so no
// query can hide inside handler or repository code.
package sqlinline

const QInsertScript = `--sql 0c15db82-9bab-46c5-9f5c-ac74022da864
insert into scripts(id, user_id, topic, description, keywords, tone, duration, content)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning created_at, updated_at;
`

const QSelectScriptByID = `--sql 07c8496a-d11c-4937-8ab6-d2d7ad202eee
select id, user_id, topic, description, keywords, tone, duration, content, created_at, updated_at
from scripts
where id = $1;
`

const QListScriptsByUser = `--sql 23741beb-2b6f-402b-a8e9-76e164db6bb0
select id, user_id, topic, description, keywords, tone, duration, content, created_at, updated_at
from scripts
where user_id = $1
order by created_at desc
limit $2;
`

const QUpdateScript = `--sql 24b6ca58-1a89-4378-9fc2-b692a8e067ce
update scripts
set topic = $2, description = $3, keywords = $4, tone = $5, duration = $6, content = $7, updated_at = now()
where id = $1
returning user_id, created_at, updated_at;
`

const QDeleteScript = `--sql ae6e72e2-b33c-47da-bbcc-942d6f41ff56
delete from scripts where id = $1;
`

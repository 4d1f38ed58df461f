package sqlinline

const QInsertAsset = `--sql b2ff8ef7-4264-40a9-96eb-a95cca99123f
insert into assets(id, script_id, user_id, type, url, metadata, keywords, status)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning created_at, updated_at;
`

const QListAssetsByScript = `--sql d6e1115e-2b03-4016-9c82-a56be61c817e
select id, script_id, user_id, type, url, metadata, keywords, status, created_at, updated_at
from assets
where script_id = $1
order by created_at asc;
`

const QListAssetsByUser = `--sql 1c4ce29f-0b35-4598-a4b7-a7bbaae682c2
select id, script_id, user_id, type, url, metadata, keywords, status, created_at, updated_at
from assets
where user_id = $1
order by created_at desc
limit $2;
`

const QLinkAssetsToScript = `--sql d1888974-14b5-41cb-8eaa-dc7e59c5a16d
update assets set script_id = $1, updated_at = now() where id = any($2);
`

const QAdvanceAssetStatus = `--sql 20e19472-89bf-4877-9de3-ca57c24a288f
update assets set status = $1, updated_at = now() where id = $2 and status = 'pending';
`

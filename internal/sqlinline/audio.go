package sqlinline

const QInsertAudioRecord = `--sql 16c5d704-308c-49e2-bf74-865ef341eb34
insert into audio_records(id, user_id, script_id, voice_settings, audio_url, file_name)
values ($1, $2, $3, $4, $5, $6)
returning created_at;
`

const QListAudioRecordsByUser = `--sql 9ff31718-8fc4-4ea1-8913-222979a446d7
select id, user_id, script_id, voice_settings, audio_url, file_name, created_at
from audio_records
where user_id = $1
order by created_at desc
limit $2;
`

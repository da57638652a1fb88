package archive

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/vmihailenco/msgpack/v5"

	"perpdesk/pkg/dibs"
)

// S3Exporter uploads daily Trade2Earn leaderboard snapshots for the
// rewards pipeline to pick up.
type S3Exporter struct {
	client *s3.S3
	bucket string
}

func NewS3Exporter(accessKey, secretKey, region, bucket string) (*S3Exporter, error) {
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("AWS access and secret keys must be set")
	}
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Region:      aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("fail to create aws session: %w", err)
	}
	return &S3Exporter{client: s3.New(sess), bucket: bucket}, nil
}

type leaderboardEntryRecord struct {
	Rank   int    `msgpack:"rank"`
	User   string `msgpack:"user"`
	Volume string `msgpack:"volume"`
	Share  string `msgpack:"share"`
	Reward string `msgpack:"reward"`
}

// UploadLeaderboard writes one program day's ranked board.
func (e *S3Exporter) UploadLeaderboard(day int64, entries []dibs.Entry) error {
	records := make([]leaderboardEntryRecord, 0, len(entries))
	for _, en := range entries {
		records = append(records, leaderboardEntryRecord{
			Rank:   en.Rank,
			User:   en.User.Hex(),
			Volume: en.Volume.String(),
			Share:  en.Share.String(),
			Reward: en.Reward.String(),
		})
	}
	data, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("fail to encode leaderboard: %w", err)
	}
	key := fmt.Sprintf("dibs/day-%d.msgpack", day)
	_, err = e.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("fail to upload leaderboard: %w", err)
	}
	return nil
}

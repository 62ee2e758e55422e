package cache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// PublicOffersKey 前台活动图缓存键
const PublicOffersKey = "offers:public"

// PublicOffersTTL 前台活动图缓存时长
const PublicOffersTTL = 60 * time.Second

var loadGroup singleflight.Group

// GetOrLoadJSON 读取缓存，未命中时合并并发加载并回写
func GetOrLoadJSON(ctx context.Context, key string, ttl time.Duration, dest interface{}, load func() (interface{}, error)) error {
	hit, err := GetJSON(ctx, key, dest)
	if err == nil && hit {
		return nil
	}

	value, err, _ := loadGroup.Do(key, func() (interface{}, error) {
		loaded, loadErr := load()
		if loadErr != nil {
			return nil, loadErr
		}
		_ = SetJSON(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return err
	}
	return assignJSON(value, dest)
}

func assignJSON(value interface{}, dest interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

package service

import (
	"context"

	"github.com/IPampurin/IpTracker/pkg/cache"
	"github.com/IPampurin/IpTracker/pkg/db"
	"github.com/IPampurin/IpTracker/pkg/geoip"
)

type Service struct {
	link  db.LinkMethods
	visit db.VisitMethods
	cache cache.CacheMethods
	geo   *geoip.Client
}

func InitService(ctx context.Context, storage *db.DataBase, linkCache *cache.Cache, geo *geoip.Client) *Service {

	svc := &Service{
		link:  storage, // *db.DataBase реализует LinkMethods
		visit: storage, // *db.DataBase реализует VisitMethods
		geo:   geo,
	}

	// типизированный nil в интерфейсном поле не равен nil,
	// поэтому кладём кэш только когда он реально поднялся
	if linkCache != nil {
		svc.cache = linkCache
	}

	return svc
}

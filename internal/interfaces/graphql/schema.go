package graphql

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"

	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

// MediaService is the part of the domain service the schema resolves against.
type MediaService interface {
	List(ctx context.Context, limit, offset int) ([]*domain.MediaRecord, error)
	GetByCorrelationKey(ctx context.Context, key string) (*domain.MediaRecord, error)
	GetBatch(ctx context.Context, keys []string) (*domain.BatchResult, error)
	PresignURLs(ctx context.Context, keys []string, expiresInHours int) (*domain.PresignResult, error)
}

var mediaType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Media",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"postId":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"filename":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"fileUrl":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"contentType": &graphql.Field{Type: graphql.String},
		"sizeBytes":   &graphql.Field{Type: graphql.Int},
		"owner":       &graphql.Field{Type: graphql.String},
		"uploadedAt":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var batchType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MediaBatch",
	Fields: graphql.Fields{
		"found":          &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(mediaType)))},
		"notFound":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		"totalRequested": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalFound":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var presignedURLType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PresignedUrl",
	Fields: graphql.Fields{
		"postId":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"mediaId":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"url":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"expiresIn": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var presignResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PresignedUrls",
	Fields: graphql.Fields{
		"urls":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(presignedURLType)))},
		"notFound":  &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		"expiresIn": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

// NewSchema builds the read-mostly GraphQL schema over the media service.
func NewSchema(service MediaService) (graphql.Schema, error) {
	postIDsArg := &graphql.ArgumentConfig{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"allMedia": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(mediaType))),
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					offset, _ := p.Args["offset"].(int)
					records, err := service.List(p.Context, limit, offset)
					if err != nil {
						return nil, err
					}
					return mediaList(records), nil
				},
			},
			"mediaByPostId": &graphql.Field{
				Type: mediaType,
				Args: graphql.FieldConfigArgument{
					"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					postID, _ := p.Args["postId"].(string)
					record, err := service.GetByCorrelationKey(p.Context, postID)
					if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return mediaMap(record), nil
				},
			},
			"mediaByPostIds": &graphql.Field{
				Type: graphql.NewNonNull(batchType),
				Args: graphql.FieldConfigArgument{"postIds": postIDsArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					result, err := service.GetBatch(p.Context, stringList(p.Args["postIds"]))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"found":          mediaList(result.Found),
						"notFound":       result.NotFound,
						"totalRequested": result.TotalRequested,
						"totalFound":     result.TotalFound,
					}, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"generatePresignedUrls": &graphql.Field{
				Type: graphql.NewNonNull(presignResultType),
				Args: graphql.FieldConfigArgument{
					"postIds":        postIDsArg,
					"expiresInHours": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					hours, _ := p.Args["expiresInHours"].(int)
					result, err := service.PresignURLs(p.Context, stringList(p.Args["postIds"]), hours)
					if err != nil {
						return nil, err
					}
					urls := make([]map[string]interface{}, 0, len(result.URLs))
					for _, u := range result.URLs {
						urls = append(urls, map[string]interface{}{
							"postId":    u.PostID,
							"mediaId":   u.MediaID,
							"url":       u.URL,
							"expiresIn": u.ExpiresIn,
						})
					}
					return map[string]interface{}{
						"urls":      urls,
						"notFound":  result.NotFound,
						"expiresIn": result.ExpiresIn,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func mediaMap(record *domain.MediaRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":          record.ID,
		"postId":      record.CorrelationKey,
		"filename":    record.StoredName,
		"fileUrl":     record.PublicURL,
		"contentType": record.ContentType,
		"sizeBytes":   record.SizeBytes,
		"owner":       record.Owner,
		"uploadedAt":  record.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mediaList(records []*domain.MediaRecord) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		out = append(out, mediaMap(record))
	}
	return out
}

func stringList(raw interface{}) []string {
	items, _ := raw.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

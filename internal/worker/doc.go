// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker reads render requests from a Redis Stream through a consumer group,
// renders each template with the handlebars engine and publishes the output on
// the result stream. Requests that fail to parse or render are reported on
// "<result stream>.errors". Every message is acknowledged once handled.
//
// A request is a JSON document in the message's "data" field:
//
//	{"id": "job-1", "template": "Hi {{name}}", "context": {"name": "Ada"},
//	 "partials": {"sig": "-- {{team}}"}, "no_escape": false}
//
// "context_yaml" may carry the context as a YAML document instead. A missing id
// is replaced by a UUID.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	engine := handlebars.New(handlebars.WithLogger(logger))
//
//	w := worker.NewWorker(cfg, redisClient, engine, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop(10 * time.Second)
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8082, redisClient, engine, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker

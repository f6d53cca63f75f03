// Package redis provides helpers around github.com/redis/go-redis/v9:
// a retrying Connect, a readiness Healthcheck and Locker, a SET NX based
// mutual-exclusion lock used to serialise quota consumption and scheduled
// jobs across replicas.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	locker := redis.NewLocker(client, cfg)
//
//	release, err := locker.Acquire(ctx, "store:"+id, 5*time.Second)
//	if err != nil {
//		return err
//	}
//	defer release()
package redis

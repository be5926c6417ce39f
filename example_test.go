package fibersched_test

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/go-fibersched"
)

func Example() {
	s, err := fibersched.New()
	if err != nil {
		panic(err)
	}

	_, _ = s.Spawn(context.Background(), func(ctx context.Context) error {
		fmt.Println("consumer: waiting")
		ok, err := s.Block(ctx, "ready", fibersched.Forever)
		fmt.Println("consumer: unblocked", ok)
		return err
	})
	_, _ = s.Spawn(context.Background(), func(ctx context.Context) error {
		fmt.Println("producer: working")
		if _, err := s.Sleep(ctx, 10*time.Millisecond); err != nil {
			return err
		}
		fmt.Println("producer: done")
		s.Unblock("ready", nil)
		return nil
	})

	if err := s.Close(); err != nil {
		panic(err)
	}

	// Output:
	// consumer: waiting
	// producer: working
	// producer: done
	// consumer: unblocked true
}

func ExampleScheduler_Sleep() {
	s, err := fibersched.New()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	for _, d := range []int{30, 10, 20} {
		d := d
		_, _ = s.Spawn(context.Background(), func(ctx context.Context) error {
			_, err := s.Sleep(ctx, time.Duration(d)*time.Millisecond)
			fmt.Println("slept", d)
			return err
		})
	}

	if err := s.Run(context.Background()); err != nil {
		panic(err)
	}

	// Output:
	// slept 10
	// slept 20
	// slept 30
}

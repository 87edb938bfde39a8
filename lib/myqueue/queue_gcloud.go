package myqueue

import (
	"context"
	"fmt"
	"os"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	grpcCodes "google.golang.org/grpc/codes"
	grpcStatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/MarcGrol/agentstudio/lib/mylog"
)

const enqueueDelay = 2 * time.Second

type gcloudTaskQueue struct {
	client    *cloudtasks.Client
	queueName string
	logger    mylog.Logger
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudQueue
	}
}

func newGcloudQueue(c context.Context) (TaskQueuer, func(), error) {
	client, err := cloudtasks.NewClient(c)
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating cloudtasks client: %s", err)
	}

	return &gcloudTaskQueue{
			client:    client,
			queueName: composeQueueName(os.Getenv("GOOGLE_CLOUD_PROJECT"), os.Getenv("LOCATION_ID"), os.Getenv("QUEUE_NAME")),
			logger:    mylog.New("queue"),
		}, func() {
			client.Close()
		}, nil
}

func (q *gcloudTaskQueue) Enqueue(c context.Context, task Task) error {
	taskName := fmt.Sprintf("%s/tasks/%s", q.queueName, task.UID)

	_, err := q.client.CreateTask(c, &taskspb.CreateTaskRequest{
		Parent: q.queueName,
		Task: &taskspb.Task{
			Name:         taskName, // de-duplicates
			ScheduleTime: timestamppb.New(time.Now().Add(enqueueDelay)),
			MessageType: &taskspb.Task_AppEngineHttpRequest{
				AppEngineHttpRequest: &taskspb.AppEngineHttpRequest{
					HttpMethod:  taskspb.HttpMethod_PUT,
					RelativeUri: task.WebhookURLPath,
					Body:        task.Payload,
				},
			},
		},
	})
	if err != nil {
		status, ok := grpcStatus.FromError(err)
		if ok && status.Code() == grpcCodes.AlreadyExists {
			q.logger.Log(c, task.UID, mylog.SeverityInfo, "Task %s already exists: ignored", task.UID)
			return nil
		}
		return fmt.Errorf("error enqueueing task %s: %s", task.UID, err)
	}

	return nil
}

func composeQueueName(projectID string, locationID string, queueName string) string {
	if queueName == "" {
		queueName = "default"
	}
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", projectID, locationID, queueName)
}

package usecase

import (
	"fmt"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
)

// Registry maps task names to tasks. It is filled once at startup.
type Registry struct {
	names []string
	tasks map[string]entity.Task
}

// NewRegistry builds a registry from tasks, keeping their order for listings.
func NewRegistry(tasks ...entity.Task) (*Registry, error) {
	l := kemba.New("uc::NewRegistry").Printf
	r := &Registry{tasks: make(map[string]entity.Task, len(tasks))}

	for _, task := range tasks {
		if task.Name == "" {
			return nil, fmt.Errorf("task without a name")
		}
		if _, dup := r.tasks[task.Name]; dup {
			return nil, fmt.Errorf("task %q registered twice", task.Name)
		}
		l("registering task: %s", task.Name)
		r.names = append(r.names, task.Name)
		r.tasks[task.Name] = task
	}
	return r, nil
}

// DefaultRegistry holds the built-in uname and deploy tasks.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(UnameTask(), DeployTask())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(name string) (entity.Task, bool) {
	task, ok := r.tasks[name]
	return task, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tasks[name]
	return ok
}

// Resolve looks up every name, failing on the first unknown one.
func (r *Registry) Resolve(names []string) ([]entity.Task, error) {
	tasks := make([]entity.Task, 0, len(names))
	for _, name := range names {
		task, ok := r.Get(name)
		if !ok {
			return nil, entity.ErrTaskNotFound{Name: name}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Tasks returns all tasks in registration order.
func (r *Registry) Tasks() []entity.Task {
	tasks := make([]entity.Task, 0, len(r.names))
	for _, name := range r.names {
		tasks = append(tasks, r.tasks[name])
	}
	return tasks
}
